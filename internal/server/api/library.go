package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/ayusman/stroked/internal/library"
)

// LibraryPublisher receives the new token library after an edit so matching
// switches over without a restart.
type LibraryPublisher interface {
	ReplaceLibrary(lib *library.Library)
}

// LibraryHandler handles HTTP requests for the token gesture library.
type LibraryHandler struct {
	path      string
	publisher LibraryPublisher
	mu        sync.Mutex
}

// NewLibraryHandler creates a handler persisting to path. publisher may be
// nil when no live engine is attached.
func NewLibraryHandler(path string, publisher LibraryPublisher) *LibraryHandler {
	return &LibraryHandler{path: path, publisher: publisher}
}

// ServeHTTP handles GET and PUT on /api/gestures. GET supports the query
// parameters q (binding search) and action (action-prefix lookup); without
// either it returns the whole library.
func (h *LibraryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type searchResponse struct {
	Results []library.BindingSearchResult `json:"results"`
}

type actionLookupResponse struct {
	Results []library.ActionBinding `json:"results"`
}

func (h *LibraryHandler) get(w http.ResponseWriter, r *http.Request) {
	lib, err := library.Load(h.path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load gesture library")
		return
	}

	if query := r.URL.Query().Get("q"); query != "" {
		writeJSON(w, http.StatusOK, searchResponse{Results: lib.SearchBindings(query)})
		return
	}
	if prefix := r.URL.Query().Get("action"); prefix != "" {
		writeJSON(w, http.StatusOK, actionLookupResponse{Results: lib.FindByAction(prefix)})
		return
	}
	writeJSON(w, http.StatusOK, lib)
}

func (h *LibraryHandler) put(w http.ResponseWriter, r *http.Request) {
	var lib library.Library
	if err := json.NewDecoder(r.Body).Decode(&lib); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := library.Save(h.path, lib); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save gesture library")
		return
	}
	lib.SchemaVersion = library.SchemaVersion
	if h.publisher != nil {
		h.publisher.ReplaceLibrary(&lib)
	}

	writeJSON(w, http.StatusOK, lib)
}

type statsResponse struct {
	Stats     library.Stats      `json:"stats"`
	Conflicts []library.Conflict `json:"conflicts"`
}

// HandleStats handles GET /api/stats: library health counters plus the
// conflict groups behind them.
func (h *LibraryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lib, err := library.Load(h.path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load gesture library")
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Stats:     lib.ComputeStats(),
		Conflicts: lib.FindConflicts(),
	})
}
