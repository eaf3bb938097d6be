// Package server provides the local HTTP control API for the Stroked
// gesture daemon: profile and gesture editing, diagnostics, usage history,
// and the live overlay WebSocket feed.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/stroked/internal/profile"
	"github.com/ayusman/stroked/internal/runtime"
	"github.com/ayusman/stroked/internal/server/api"
	"github.com/ayusman/stroked/internal/store"
)

// Config holds the server configuration.
type Config struct {
	Engine      *runtime.Engine
	Profiles    *profile.Handle
	ProfilePath string
	LibraryPath string
	Store       *store.Store
	Overlay     *OverlayHub
	StaticDir   string
}

// Server represents the HTTP control server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Profiles != nil {
		profilesHandler := api.NewProfilesHandler(s.config.Profiles, s.config.ProfilePath)
		s.mux.Handle("/api/profiles", profilesHandler)
		s.mux.Handle("/api/profiles/", profilesHandler)
	}

	var publisher api.LibraryPublisher
	if s.config.Engine != nil {
		publisher = s.config.Engine
	}
	libraryHandler := api.NewLibraryHandler(s.config.LibraryPath, publisher)
	s.mux.Handle("/api/gestures", libraryHandler)
	s.mux.HandleFunc("/api/stats", libraryHandler.HandleStats)
	s.mux.HandleFunc("/api/parse", api.HandleParse)

	if s.config.Store != nil {
		usageHandler := api.NewUsageHandler(s.config.Store)
		s.mux.Handle("/api/usage", usageHandler)
	}

	if s.config.Overlay != nil {
		s.mux.Handle("/ws/overlay", s.config.Overlay)
	}

	// Serve the settings UI if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Engine != nil {
		response["enabled"] = s.config.Engine.IsEnabled()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
