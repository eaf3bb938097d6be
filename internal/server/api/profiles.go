// Package api provides HTTP API handlers for the Stroked control server.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ayusman/stroked/internal/gesture"
	"github.com/ayusman/stroked/internal/profile"
)

// ProfilesHandler handles HTTP requests for the profile database.
type ProfilesHandler struct {
	handle *profile.Handle
	path   string
	mu     sync.Mutex // serializes writes to the db file
}

// NewProfilesHandler creates a handler over the live profile handle. Writes
// are persisted to path and then published to the handle.
func NewProfilesHandler(handle *profile.Handle, path string) *ProfilesHandler {
	return &ProfilesHandler{handle: handle, path: path}
}

// ServeHTTP implements the http.Handler interface and routes requests.
func (h *ProfilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/profiles or /api/profiles/gestures
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r)
		case http.MethodPut:
			h.put(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case path == "gestures" && r.Method == http.MethodPost:
		h.addGesture(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// get handles GET /api/profiles and returns the current database snapshot.
func (h *ProfilesHandler) get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.handle.Snapshot())
}

// put handles PUT /api/profiles: it validates the whole database, persists
// it, and publishes it to the engine.
func (h *ProfilesHandler) put(w http.ResponseWriter, r *http.Request) {
	var db profile.DB
	if err := json.NewDecoder(r.Body).Decode(&db); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := validateDB(&db); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if db.Bindings == nil {
		db.Bindings = make(map[string]string)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := profile.Save(h.path, db); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profiles")
		return
	}
	db.SchemaVersion = profile.SchemaVersion
	h.handle.Replace(db)

	writeJSON(w, http.StatusOK, h.handle.Snapshot())
}

type addGestureRequest struct {
	Name   string `json:"name"`
	Points string `json:"points"`
}

type addGestureResponse struct {
	ID string `json:"id"`
}

// addGesture handles POST /api/profiles/gestures: it registers a new
// gesture template with a freshly minted id.
func (h *ProfilesHandler) addGesture(w http.ResponseWriter, r *http.Request) {
	var req addGestureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	serialized := req.Name + ":" + req.Points
	if _, err := gesture.ParseGesture(serialized); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid gesture points: %v", err))
		return
	}

	id := uuid.New().String()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.handle.Update(func(db *profile.DB) {
		db.Gestures = append(db.Gestures, id)
		db.Bindings[id] = serialized
	})
	if err := profile.Save(h.path, *h.handle.Snapshot()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profiles")
		return
	}

	writeJSON(w, http.StatusCreated, addGestureResponse{ID: id})
}

// validateDB rejects databases whose gesture templates do not parse; a bad
// template would otherwise be silently skipped at match time.
func validateDB(db *profile.DB) error {
	for id, serialized := range db.Bindings {
		if _, err := gesture.ParseGesture(serialized); err != nil {
			return fmt.Errorf("gesture %q does not parse: %v", id, err)
		}
	}
	for i := range db.Profiles {
		for _, b := range db.Profiles[i].Bindings {
			if _, ok := db.Bindings[b.GestureID]; !ok {
				return fmt.Errorf("profile %q binds unknown gesture %q", db.Profiles[i].ID, b.GestureID)
			}
		}
	}
	return nil
}
