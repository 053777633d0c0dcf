package gateway

import "time"

// Defaults applied when the request body omits the model or experiment name.
const (
	DefaultModelName      = "Service System Demo"
	DefaultExperimentName = "Baseline"
)

// SimulationRequest is the body of POST /simulations/run.
type SimulationRequest struct {
	ServerCapacity int    `json:"server_capacity"`
	ModelName      string `json:"model_name"`
	ExperimentName string `json:"experiment_name"`
}

// SimulationResult is the normalized response for a completed run.
type SimulationResult struct {
	SimulationID      string         `json:"simulation_id"`
	ServerCapacity    int            `json:"server_capacity"`
	MeanQueueSize     float64        `json:"mean_queue_size"`
	ServerUtilization float64        `json:"server_utilization"`
	RawOutputs        map[string]any `json:"raw_outputs"`
	Status            string         `json:"status"`
	Timestamp         time.Time      `json:"timestamp"`
}

// ModelInfo describes one catalog entry. Version fields are populated only
// when version detail is requested.
type ModelInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	LatestVersionID string `json:"latest_version_id,omitempty"`
	VersionName     string `json:"version_name,omitempty"`
	VersionNumber   int    `json:"version_number,omitempty"`
}
