package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cloudsim-labs/simulation-gateway/pkg/logger"
	"github.com/cloudsim-labs/simulation-gateway/pkg/utils"
)

const defaultBaseURL = "https://cloud.example.com/api/open/v1"

// Option configures a CloudClient.
type Option func(*CloudClient)

// CloudClient talks to the remote simulation cloud over its REST API.
// After construction the client is immutable and safe for concurrent use.
type CloudClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	backoff    utils.BackoffStrategy
}

var _ Client = (*CloudClient)(nil)

// NewCloudClient creates a client authenticated with the given API key.
func NewCloudClient(apiKey string, opts ...Option) *CloudClient {
	c := &CloudClient{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		backoff:    utils.NewExponentialBackoff(500*time.Millisecond, 10*time.Second, 2.0, true),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL sets a custom API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *CloudClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *CloudClient) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CloudClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetry sets the retry budget and backoff for failed requests.
// Retries apply to network errors and 5xx responses only.
func WithRetry(maxRetries int, backoff utils.BackoffStrategy) Option {
	return func(c *CloudClient) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// Wire shapes of the provider's REST API.
type modelPayload struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	LatestVersion *versionPayload `json:"latest_version,omitempty"`
}

type versionPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
}

type inputsPayload struct {
	Inputs map[string]any `json:"inputs"`
}

type createSimulationPayload struct {
	VersionID  string         `json:"version_id"`
	Experiment string         `json:"experiment"`
	Inputs     map[string]any `json:"inputs"`
}

type simulationPayload struct {
	ID string `json:"id"`
}

type outputsPayload struct {
	Outputs map[string]any `json:"outputs"`
}

// Models lists the catalog in provider order.
func (c *CloudClient) Models(ctx context.Context) ([]Model, error) {
	var payload []modelPayload
	if err := c.doJSON(ctx, http.MethodGet, "/models", nil, &payload); err != nil {
		return nil, err
	}

	models := make([]Model, 0, len(payload))
	for _, p := range payload {
		m := Model{ID: p.ID, Name: p.Name}
		if p.LatestVersion != nil {
			m.LatestVersion = &ModelVersion{
				ID:     p.LatestVersion.ID,
				Name:   p.LatestVersion.Name,
				Number: p.LatestVersion.Number,
			}
		}
		models = append(models, m)
	}
	return models, nil
}

// LatestModelVersion resolves a model name to its latest published version.
// The provider exposes no by-name lookup, so this scans the catalog.
func (c *CloudClient) LatestModelVersion(ctx context.Context, modelName string) (ModelVersion, error) {
	models, err := c.Models(ctx)
	if err != nil {
		return ModelVersion{}, err
	}
	for _, m := range models {
		if m.Name == modelName {
			if m.LatestVersion == nil {
				return ModelVersion{}, fmt.Errorf("model %q has no published version", modelName)
			}
			return *m.LatestVersion, nil
		}
	}
	return ModelVersion{}, fmt.Errorf("%w: %s", ErrModelNotFound, modelName)
}

// InputsFromExperiment fetches the experiment's default inputs and returns a
// set the caller can override before creating a simulation.
func (c *CloudClient) InputsFromExperiment(ctx context.Context, version ModelVersion, experimentName string) (*Inputs, error) {
	path := fmt.Sprintf("/versions/%s/experiments/%s/inputs",
		url.PathEscape(version.ID), url.PathEscape(experimentName))

	var payload inputsPayload
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}

	inputs := NewInputs(version.ID, experimentName)
	for name, value := range payload.Inputs {
		inputs.SetInput(name, value)
	}
	return inputs, nil
}

// CreateSimulation registers a simulation instance and returns its
// provider-assigned id. No execution happens yet.
func (c *CloudClient) CreateSimulation(ctx context.Context, inputs *Inputs) (*Simulation, error) {
	body := createSimulationPayload{
		VersionID:  inputs.VersionID(),
		Experiment: inputs.Experiment(),
		Inputs:     inputs.Values(),
	}

	var payload simulationPayload
	if err := c.doJSON(ctx, http.MethodPost, "/simulations", body, &payload); err != nil {
		return nil, err
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("provider returned empty simulation id")
	}

	logger.Debug("cloud simulation created", "simulation_id", payload.ID)
	return NewSimulation(payload.ID, inputs), nil
}

// Outputs fetches the simulation's output bag, triggering execution on the
// provider side if results are not yet computed.
func (c *CloudClient) Outputs(ctx context.Context, sim *Simulation) (*Outputs, error) {
	path := fmt.Sprintf("/simulations/%s/outputs", url.PathEscape(sim.ID))

	var payload outputsPayload
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &payload); err != nil {
		return nil, err
	}
	return NewOutputs(payload.Outputs), nil
}

// doJSON executes one API call: marshal body, set auth headers, retry on
// network errors and 5xx responses, decode the JSON result into out.
func (c *CloudClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

func (c *CloudClient) do(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var resp *http.Response

	for attempt := 0; ; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		var doErr error
		resp, doErr = c.httpClient.Do(req)

		retryable := doErr != nil || resp.StatusCode >= 500
		if !retryable || attempt >= c.maxRetries {
			if doErr != nil {
				return nil, &NetworkError{Err: doErr}
			}
			return resp, nil
		}

		if doErr == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		logger.Warn("provider request failed, retrying",
			"method", method, "path", path, "attempt", attempt+1, "error", doErr)

		select {
		case <-ctx.Done():
			return nil, &NetworkError{Err: ctx.Err()}
		case <-time.After(c.backoff.NextDelay(attempt)):
		}
	}
}

// apiError builds an APIError from a non-2xx response, preferring the
// provider's own detail text when the body is structured.
func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Detail != "" {
			message = body.Detail
		} else if body.Error != "" {
			message = body.Error
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
