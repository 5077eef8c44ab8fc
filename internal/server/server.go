// Package server exposes the binding engine over a localhost HTTP/JSON API
// so short-lived CLI invocations can drive the long-lived serve process
// that owns the engine state.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/vrcctl/vrcctl/internal/engine"
)

type Server struct {
	binder *engine.Binder
	logger *slog.Logger
}

func New(binder *engine.Binder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{binder: binder, logger: logger}
}

// Handler returns the API routes wrapped with request-id logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/profiles/{profile}/launch", s.handleLaunch)
	mux.HandleFunc("POST /v1/profiles/{profile}/stop", s.handleStop)
	mux.HandleFunc("GET /v1/profiles", s.handleProfiles)
	mux.HandleFunc("GET /v1/processes", s.handleProcesses)
	mux.HandleFunc("GET /v1/launcher", s.handleLauncher)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.withRequestID(mux)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.binder.Launch(r.Context(), profile))
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.binder.Stop(r.Context(), profile))
}

// ProfilesResponse is the GET /v1/profiles payload.
type ProfilesResponse struct {
	Profiles map[engine.Profile]int32 `json:"profiles"`
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProfilesResponse{
		Profiles: s.binder.ListBound(r.Context()),
	})
}

// ProcessesResponse is the GET /v1/processes payload.
type ProcessesResponse struct {
	Lines []string `json:"lines"`
}

func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProcessesResponse{
		Lines: s.binder.DiagnosticDump(r.Context()),
	})
}

// LauncherResponse is the GET /v1/launcher payload.
type LauncherResponse struct {
	Running bool `json:"running"`
}

func (s *Server) handleLauncher(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LauncherResponse{
		Running: s.binder.IsLauncherRunning(r.Context()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func profileFromPath(w http.ResponseWriter, r *http.Request) (engine.Profile, bool) {
	raw := r.PathValue("profile")
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "profile must be a positive integer, got " + strconv.Quote(raw),
		})
		return 0, false
	}
	return engine.Profile(n), true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
