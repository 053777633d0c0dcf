// Package gateway forwards simulation requests to a provider and normalizes
// the results. It holds no state between requests: every submission is a
// fresh provider round trip, and nothing is cached or persisted locally.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudsim-labs/simulation-gateway/internal/provider"
	"github.com/cloudsim-labs/simulation-gateway/pkg/logger"
)

// Provider metric keys and the input field the gateway sets. The key names
// are part of the provider's experiment contract.
const (
	serverCapacityInput  = "Server capacity"
	meanQueueSizeKey     = "Mean queue size|Mean queue size"
	serverUtilizationKey = "Utilization|Server utilization"
)

// ErrInvalidCapacity reports a non-positive server capacity. It is checked
// at the boundary, before any provider call.
var ErrInvalidCapacity = errors.New("server_capacity must be a positive integer")

// Gateway runs simulations through a provider client.
type Gateway struct {
	client provider.Client
	now    func() time.Time
}

// New creates a Gateway backed by the given provider client.
func New(client provider.Client) *Gateway {
	return &Gateway{
		client: client,
		now:    time.Now,
	}
}

// RunSimulation validates the request, drives one provider round trip and
// extracts the two named metrics from the output bag.
//
// A metric key absent from the bag yields 0.0 and a warning log; the raw bag
// is passed through untouched so callers can inspect what the provider
// actually returned.
func (g *Gateway) RunSimulation(ctx context.Context, req SimulationRequest) (*SimulationResult, error) {
	if req.ServerCapacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, req.ServerCapacity)
	}

	modelName := req.ModelName
	if modelName == "" {
		modelName = DefaultModelName
	}
	experimentName := req.ExperimentName
	if experimentName == "" {
		experimentName = DefaultExperimentName
	}

	logger.Info("running simulation",
		"model", modelName, "experiment", experimentName, "server_capacity", req.ServerCapacity)

	version, err := g.client.LatestModelVersion(ctx, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model version: %w", err)
	}

	inputs, err := g.client.InputsFromExperiment(ctx, version, experimentName)
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment inputs: %w", err)
	}
	inputs.SetInput(serverCapacityInput, req.ServerCapacity)

	sim, err := g.client.CreateSimulation(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation: %w", err)
	}

	outputs, err := g.client.Outputs(ctx, sim)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch simulation outputs: %w", err)
	}

	result := &SimulationResult{
		SimulationID:      sim.ID,
		ServerCapacity:    req.ServerCapacity,
		MeanQueueSize:     g.metric(outputs, meanQueueSizeKey, sim.ID),
		ServerUtilization: g.metric(outputs, serverUtilizationKey, sim.ID),
		RawOutputs:        outputs.Raw(),
		Status:            "completed",
		Timestamp:         g.now().UTC(),
	}

	logger.Info("simulation completed",
		"simulation_id", sim.ID,
		"mean_queue_size", result.MeanQueueSize,
		"server_utilization", result.ServerUtilization)

	return result, nil
}

func (g *Gateway) metric(outputs *provider.Outputs, key, simulationID string) float64 {
	value, ok := outputs.Value(key)
	if !ok {
		logger.Warn("output metric missing, defaulting to 0",
			"simulation_id", simulationID, "key", key)
		return 0
	}
	return value
}

// ListModels returns the provider catalog in provider order.
func (g *Gateway) ListModels(ctx context.Context, includeVersions bool) ([]ModelInfo, error) {
	models, err := g.client.Models(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	result := make([]ModelInfo, 0, len(models))
	for _, model := range models {
		info := ModelInfo{ID: model.ID, Name: model.Name}
		if model.LatestVersion != nil {
			info.LatestVersionID = model.LatestVersion.ID
			if includeVersions {
				info.VersionName = model.LatestVersion.Name
				info.VersionNumber = model.LatestVersion.Number
			}
		}
		result = append(result, info)
	}
	return result, nil
}

// GetModel looks a model up by id, scanning the full catalog. Catalogs are
// small and externally owned, so no local index is kept.
func (g *Gateway) GetModel(ctx context.Context, modelID string) (ModelInfo, error) {
	models, err := g.client.Models(ctx)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("failed to list models: %w", err)
	}

	for _, model := range models {
		if model.ID != modelID {
			continue
		}
		info := ModelInfo{ID: model.ID, Name: model.Name}
		if model.LatestVersion != nil {
			info.LatestVersionID = model.LatestVersion.ID
			info.VersionName = model.LatestVersion.Name
			info.VersionNumber = model.LatestVersion.Number
		}
		return info, nil
	}

	return ModelInfo{}, fmt.Errorf("%w: %s", provider.ErrModelNotFound, modelID)
}
