package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudsim-labs/simulation-gateway/pkg/logger"
)

// MockClient is an in-process stand-in for the simulation cloud. It serves a
// fixed three-model catalog and computes metrics from a linear formula, so
// responses are deterministic for a given server capacity.
//
// The simulation counter is instance state guarded by a mutex; constructing
// a fresh MockClient per test keeps ids isolated.
type MockClient struct {
	mu       sync.Mutex
	simCount int
	calls    int

	catalog []Model
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock provider with the demo model catalog.
func NewMockClient() *MockClient {
	return &MockClient{
		catalog: []Model{
			{ID: "model_1", Name: "Service System Demo", LatestVersion: &ModelVersion{ID: "version_model_1", Name: "Service System Demo", Number: 1}},
			{ID: "model_2", Name: "Manufacturing Line Demo", LatestVersion: &ModelVersion{ID: "version_model_2", Name: "Manufacturing Line Demo", Number: 1}},
			{ID: "model_3", Name: "Supply Chain Demo", LatestVersion: &ModelVersion{ID: "version_model_3", Name: "Supply Chain Demo", Number: 1}},
		},
	}
}

// Calls returns how many provider operations have been invoked. Tests use it
// to assert that validation failures never reach the provider.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockClient) recordCall() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

// Models returns the demo catalog in fixed order.
func (m *MockClient) Models(ctx context.Context) ([]Model, error) {
	m.recordCall()
	out := make([]Model, len(m.catalog))
	copy(out, m.catalog)
	return out, nil
}

// LatestModelVersion resolves a model name to its latest published version.
func (m *MockClient) LatestModelVersion(ctx context.Context, modelName string) (ModelVersion, error) {
	m.recordCall()
	for _, model := range m.catalog {
		if model.Name == modelName && model.LatestVersion != nil {
			return *model.LatestVersion, nil
		}
	}
	return ModelVersion{}, fmt.Errorf("%w: %s", ErrModelNotFound, modelName)
}

// InputsFromExperiment creates an empty input set scoped to the experiment.
func (m *MockClient) InputsFromExperiment(ctx context.Context, version ModelVersion, experimentName string) (*Inputs, error) {
	m.recordCall()
	return NewInputs(version.ID, experimentName), nil
}

// CreateSimulation assigns the next sequential simulation id.
func (m *MockClient) CreateSimulation(ctx context.Context, inputs *Inputs) (*Simulation, error) {
	m.recordCall()
	m.mu.Lock()
	m.simCount++
	id := fmt.Sprintf("sim_%04d", m.simCount)
	m.mu.Unlock()

	logger.Debug("mock simulation created", "simulation_id", id)
	return NewSimulation(id, inputs), nil
}

// Outputs computes the demo metric bag from the requested server capacity.
// An unset capacity defaults to 1.
func (m *MockClient) Outputs(ctx context.Context, sim *Simulation) (*Outputs, error) {
	m.recordCall()

	capacity := 1.0
	if v, ok := sim.inputs.Input("Server capacity"); ok {
		switch n := v.(type) {
		case int:
			capacity = float64(n)
		case int64:
			capacity = float64(n)
		case float64:
			capacity = n
		}
	}

	meanQueue := 10 - capacity*1.5
	if meanQueue < 0 {
		meanQueue = 0
	}
	utilization := 50 + capacity*8
	if utilization > 100 {
		utilization = 100
	}

	return NewOutputs(map[string]any{
		"Mean queue size|Mean queue size": meanQueue,
		"Utilization|Server utilization":  utilization,
	}), nil
}
