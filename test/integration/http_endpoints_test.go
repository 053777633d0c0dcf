//go:build integration
// +build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/cloudsim-labs/simulation-gateway/internal/gateway"
	"github.com/cloudsim-labs/simulation-gateway/internal/items"
	"github.com/cloudsim-labs/simulation-gateway/internal/provider"
)

func newGatewayServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(gateway.NewHTTPServer(gateway.New(provider.NewMockClient())).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func newItemsServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := items.Open(filepath.Join(t.TempDir(), "items.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(items.NewHTTPServer(store).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
}

// TestIntegration_GatewayRunSimulation runs a simulation end-to-end against
// the mock provider and verifies the computed metrics for capacity 5.
func TestIntegration_GatewayRunSimulation(t *testing.T) {
	srv := newGatewayServer(t)

	resp := postJSON(t, srv.URL+"/simulations/run", `{"server_capacity": 5}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var result gateway.SimulationResult
	decode(t, resp, &result)

	if result.SimulationID != "sim_0001" {
		t.Fatalf("expected simulation_id sim_0001, got %q", result.SimulationID)
	}
	if result.MeanQueueSize != 2.5 {
		t.Fatalf("expected mean_queue_size 2.5, got %f", result.MeanQueueSize)
	}
	if result.ServerUtilization != 90.0 {
		t.Fatalf("expected server_utilization 90.0, got %f", result.ServerUtilization)
	}
	if result.Status != "completed" {
		t.Fatalf("expected status completed, got %q", result.Status)
	}
}

func TestIntegration_GatewayModelCatalog(t *testing.T) {
	srv := newGatewayServer(t)

	resp := getJSON(t, srv.URL+"/simulations/models?include_versions=true")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var models []gateway.ModelInfo
	decode(t, resp, &models)
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(models))
	}

	first := getJSON(t, srv.URL+"/simulations/models/"+models[0].ID)
	if first.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", first.StatusCode)
	}
	var model gateway.ModelInfo
	decode(t, first, &model)
	if model.ID != models[0].ID {
		t.Fatalf("expected model %q, got %q", models[0].ID, model.ID)
	}

	missing := getJSON(t, srv.URL+"/simulations/models/no_such_model")
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", missing.StatusCode)
	}
}

func TestIntegration_GatewayHealth(t *testing.T) {
	srv := newGatewayServer(t)

	for _, path := range []string{"/", "/health", "/simulations/health"} {
		resp := getJSON(t, srv.URL+path)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: expected status 200, got %d", path, resp.StatusCode)
		}
	}
}

// TestIntegration_ItemLifecycle exercises the full CRUD round trip over HTTP.
func TestIntegration_ItemLifecycle(t *testing.T) {
	srv := newItemsServer(t)

	// Empty list before any writes.
	resp := getJSON(t, srv.URL+"/items/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	var list []items.Item
	decode(t, resp, &list)
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d items", len(list))
	}

	// Create.
	resp = postJSON(t, srv.URL+"/items/", `{"title": "Widget", "description": "A widget", "price": 1299}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.StatusCode)
	}
	var created items.Item
	decode(t, resp, &created)
	itemURL := fmt.Sprintf("%s/items/%d", srv.URL, created.ID)

	// Read back.
	resp = getJSON(t, itemURL)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	var fetched items.Item
	decode(t, resp, &fetched)
	if fetched.Title != "Widget" {
		t.Fatalf("expected title Widget, got %q", fetched.Title)
	}

	// Partial update.
	req, err := http.NewRequest(http.MethodPut, itemURL, bytes.NewReader([]byte(`{"price": 999}`)))
	if err != nil {
		t.Fatalf("failed to build PUT request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	putResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT failed: %v", err)
	}
	defer putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", putResp.StatusCode)
	}
	var updated items.Item
	decode(t, putResp, &updated)
	if updated.Title != "Widget" {
		t.Fatalf("expected title to survive partial update, got %q", updated.Title)
	}
	if updated.Price == nil || *updated.Price != 999 {
		t.Fatalf("unexpected price after update: %v", updated.Price)
	}

	// Delete, then verify the item is gone.
	delReq, err := http.NewRequest(http.MethodDelete, itemURL, nil)
	if err != nil {
		t.Fatalf("failed to build DELETE request: %v", err)
	}
	delResp, err := http.DefaultClient.Do(delReq)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", delResp.StatusCode)
	}

	resp = getJSON(t, itemURL)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", resp.StatusCode)
	}
}
