package items

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cloudsim-labs/simulation-gateway/pkg/httpmw"
	"github.com/cloudsim-labs/simulation-gateway/pkg/logger"
)

// HTTPServer exposes the item store over HTTP.
type HTTPServer struct {
	router *mux.Router
	store  *Store
}

// createItemRequest is the body of POST /items/.
type createItemRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
}

// NewHTTPServer creates the HTTP surface for the given store.
func NewHTTPServer(store *Store) *HTTPServer {
	s := &HTTPServer{
		router: mux.NewRouter(),
		store:  store,
	}

	s.router.Use(httpmw.RequestLogger)

	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Both the trailing-slash collection path and the bare one are served;
	// a redirect would drop POST bodies.
	s.router.HandleFunc("/items", s.handleCreateItem).Methods(http.MethodPost)
	s.router.HandleFunc("/items/", s.handleCreateItem).Methods(http.MethodPost)
	s.router.HandleFunc("/items", s.handleListItems).Methods(http.MethodGet)
	s.router.HandleFunc("/items/", s.handleListItems).Methods(http.MethodGet)
	s.router.HandleFunc("/items/{id}", s.handleGetItem).Methods(http.MethodGet)
	s.router.HandleFunc("/items/{id}", s.handleUpdateItem).Methods(http.MethodPut)
	s.router.HandleFunc("/items/{id}", s.handleDeleteItem).Methods(http.MethodDelete)

	return s
}

// Handler returns the root http.Handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"message": "Item CRUD API"})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
}

// handleCreateItem handles POST /items/
func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	item, err := s.store.Create(r.Context(), req.Title, req.Description, req.Price)
	if err != nil {
		s.writeStoreError(w, err, "failed to create item")
		return
	}

	logger.Info("item created", "item_id", item.ID)
	s.writeJSON(w, http.StatusCreated, item)
}

// handleListItems handles GET /items/?skip=&limit=
func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	skip := 0
	if v := r.URL.Query().Get("skip"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid skip parameter: "+v)
			return
		}
		skip = parsed
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit parameter: "+v)
			return
		}
		limit = parsed
	}

	items, err := s.store.List(r.Context(), skip, limit)
	if err != nil {
		s.writeStoreError(w, err, "failed to list items")
		return
	}

	s.writeJSON(w, http.StatusOK, items)
}

// handleGetItem handles GET /items/{id}
func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.itemID(w, r)
	if !ok {
		return
	}

	item, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "failed to get item")
		return
	}

	s.writeJSON(w, http.StatusOK, item)
}

// handleUpdateItem handles PUT /items/{id} with a partial body.
func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.itemID(w, r)
	if !ok {
		return
	}

	var patch ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		s.writeError(w, http.StatusBadRequest, "title cannot be blank")
		return
	}

	item, err := s.store.Update(r.Context(), id, patch)
	if err != nil {
		s.writeStoreError(w, err, "failed to update item")
		return
	}

	logger.Info("item updated", "item_id", id)
	s.writeJSON(w, http.StatusOK, item)
}

// handleDeleteItem handles DELETE /items/{id}
func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.itemID(w, r)
	if !ok {
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "failed to delete item")
		return
	}

	logger.Info("item deleted", "item_id", id)
	s.writeJSON(w, http.StatusOK, map[string]any{"message": "Item deleted successfully"})
}

// itemID parses the {id} path variable; on failure it writes a 400 and
// reports false.
func (s *HTTPServer) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid item id: "+raw)
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) writeStoreError(w http.ResponseWriter, err error, context string) {
	if errors.Is(err, ErrItemNotFound) {
		s.writeError(w, http.StatusNotFound, "Item not found")
		return
	}
	logger.Error(context, "error", err)
	s.writeError(w, http.StatusInternalServerError, context+": "+err.Error())
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
