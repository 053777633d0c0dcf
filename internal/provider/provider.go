// Package provider defines the contract with the external simulation cloud
// and its two implementations: a real HTTP client and a deterministic mock.
// The provider owns execution, queuing and result caching; this package only
// models the surface the gateway needs.
package provider

import (
	"context"
	"encoding/json"
)

// Model is a catalog entry on the simulation cloud.
type Model struct {
	ID            string
	Name          string
	LatestVersion *ModelVersion
}

// ModelVersion identifies one published version of a model.
type ModelVersion struct {
	ID     string
	Name   string
	Number int
}

// Inputs is a named-parameter set scoped to one experiment of one model
// version. The provider seeds it with the experiment's defaults; callers
// override individual values before creating a simulation.
type Inputs struct {
	versionID  string
	experiment string
	values     map[string]any
}

// NewInputs creates an empty input set for the given version and experiment.
func NewInputs(versionID, experiment string) *Inputs {
	return &Inputs{
		versionID:  versionID,
		experiment: experiment,
		values:     make(map[string]any),
	}
}

// SetInput sets a named input value.
func (in *Inputs) SetInput(name string, value any) {
	in.values[name] = value
}

// Input returns a named input value.
func (in *Inputs) Input(name string) (any, bool) {
	v, ok := in.values[name]
	return v, ok
}

// VersionID returns the model version the inputs are scoped to.
func (in *Inputs) VersionID() string { return in.versionID }

// Experiment returns the experiment the inputs are scoped to.
func (in *Inputs) Experiment() string { return in.experiment }

// Values returns a copy of all input values.
func (in *Inputs) Values() map[string]any {
	out := make(map[string]any, len(in.values))
	for k, v := range in.values {
		out[k] = v
	}
	return out
}

// Simulation is a provider-created simulation instance. The ID is assigned
// by the provider and opaque to the gateway.
type Simulation struct {
	ID     string
	inputs *Inputs
}

// NewSimulation wraps a provider-assigned simulation id with the inputs it
// was created from.
func NewSimulation(id string, inputs *Inputs) *Simulation {
	return &Simulation{ID: id, inputs: inputs}
}

// Outputs is the provider's output bag: free-form metric names mapped to
// arbitrary values. Numeric lookup is explicit about missing keys so the
// caller decides the default-or-fail policy.
type Outputs struct {
	values map[string]any
}

// NewOutputs creates an output bag from raw provider values.
func NewOutputs(values map[string]any) *Outputs {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Outputs{values: copied}
}

// Value returns the named metric as a float64. The second return reports
// whether the key exists and holds a numeric value.
func (o *Outputs) Value(key string) (float64, bool) {
	v, ok := o.values[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Raw returns a copy of the entire output bag, unvalidated.
func (o *Outputs) Raw() map[string]any {
	out := make(map[string]any, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}

// Client is the simulation provider contract. Outputs has get-or-run
// semantics: the provider executes the simulation at most once per created
// instance and returns cached results on repeat calls (its guarantee, not
// the gateway's).
type Client interface {
	Models(ctx context.Context) ([]Model, error)
	LatestModelVersion(ctx context.Context, modelName string) (ModelVersion, error)
	InputsFromExperiment(ctx context.Context, version ModelVersion, experimentName string) (*Inputs, error)
	CreateSimulation(ctx context.Context, inputs *Inputs) (*Simulation, error)
	Outputs(ctx context.Context, sim *Simulation) (*Outputs, error)
}
