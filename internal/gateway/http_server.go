package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/cloudsim-labs/simulation-gateway/internal/provider"
	"github.com/cloudsim-labs/simulation-gateway/pkg/httpmw"
	"github.com/cloudsim-labs/simulation-gateway/pkg/logger"
)

const (
	serviceName    = "simulation-gateway"
	serviceVersion = "1.0.0"
)

// HTTPServer exposes the gateway over HTTP.
type HTTPServer struct {
	router  *mux.Router
	gateway *Gateway
}

// NewHTTPServer creates the HTTP surface for the given gateway.
func NewHTTPServer(gw *Gateway) *HTTPServer {
	s := &HTTPServer{
		router:  mux.NewRouter(),
		gateway: gw,
	}

	s.router.Use(httpmw.RequestLogger)

	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleLiveness).Methods(http.MethodGet)

	s.router.HandleFunc("/simulations/run", s.handleRunSimulation).Methods(http.MethodPost)
	s.router.HandleFunc("/simulations/models", s.handleListModels).Methods(http.MethodGet)
	s.router.HandleFunc("/simulations/models/{model_id}", s.handleGetModel).Methods(http.MethodGet)
	s.router.HandleFunc("/simulations/health", s.handleHealth).Methods(http.MethodGet)

	return s
}

// Handler returns the root http.Handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Simulation Gateway API",
		"version": serviceVersion,
		"health":  "/simulations/health",
	})
}

func (s *HTTPServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}

// handleRunSimulation handles POST /simulations/run
func (s *HTTPServer) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.gateway.RunSimulation(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err, "internal error while running simulation")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleListModels handles GET /simulations/models
func (s *HTTPServer) handleListModels(w http.ResponseWriter, r *http.Request) {
	includeVersions := false
	if flag := r.URL.Query().Get("include_versions"); flag != "" {
		parsed, err := strconv.ParseBool(flag)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid include_versions flag: "+flag)
			return
		}
		includeVersions = parsed
	}

	models, err := s.gateway.ListModels(r.Context(), includeVersions)
	if err != nil {
		s.writeServiceError(w, err, "failed to list models")
		return
	}

	s.writeJSON(w, http.StatusOK, models)
}

// handleGetModel handles GET /simulations/models/{model_id}
func (s *HTTPServer) handleGetModel(w http.ResponseWriter, r *http.Request) {
	modelID := mux.Vars(r)["model_id"]

	model, err := s.gateway.GetModel(r.Context(), modelID)
	if err != nil {
		s.writeServiceError(w, err, "failed to look up model")
		return
	}

	s.writeJSON(w, http.StatusOK, model)
}

// writeServiceError maps gateway errors to transport statuses: validation
// failures are 400, unknown models 404, everything else 500 with the
// original message preserved as detail text.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error, context string) {
	switch {
	case errors.Is(err, ErrInvalidCapacity):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, provider.ErrModelNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error(context, "error", err)
		s.writeError(w, http.StatusInternalServerError, context+": "+err.Error())
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]any{"detail": detail})
}
