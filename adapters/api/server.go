// Package api exposes persisted crosstab runs as a read-only JSON service
// for downstream renderers. The engine computes; this layer only serves.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wavetrack/domain/core"
	"wavetrack/internal"
	"wavetrack/ports"
)

// Server serves stored crosstab runs over HTTP.
type Server struct {
	router *chi.Mux
	repo   ports.CrosstabRepository
	log    *internal.Logger
}

// NewServer creates the API server around a repository.
func NewServer(repo ports.CrosstabRepository, logger *internal.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		repo:   repo,
		log:    logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Get("/{runID}", s.handleGetRun)
		r.Get("/{runID}/sections", s.handleGetSections)
	})
}

// Handler returns the HTTP handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the listener fails.
func (s *Server) Start(addr string) error {
	s.log.Info("crosstab API listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	runs, err := s.repo.ListRuns(r.Context(), limit)
	if err != nil {
		s.log.Error("list runs failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := core.RunID(chi.URLParam(r, "runID"))
	ct, err := s.repo.GetByRunID(r.Context(), runID)
	if err != nil {
		if core.IsNotFoundError(err) {
			s.writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.log.Error("get run %s failed: %v", runID, err)
		s.writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	s.writeJSON(w, http.StatusOK, ct)
}

// handleGetSections serves the section index of one run: the section names
// in display order with their row counts.
func (s *Server) handleGetSections(w http.ResponseWriter, r *http.Request) {
	runID := core.RunID(chi.URLParam(r, "runID"))
	ct, err := s.repo.GetByRunID(r.Context(), runID)
	if err != nil {
		if core.IsNotFoundError(err) {
			s.writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.log.Error("get run %s failed: %v", runID, err)
		s.writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	counts := make(map[string]int, len(ct.Sections))
	for _, row := range ct.Rows {
		counts[row.Section]++
	}
	sections := make([]map[string]interface{}, 0, len(ct.Sections))
	for _, name := range ct.Sections {
		sections = append(sections, map[string]interface{}{
			"name":      name,
			"row_count": counts[name],
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"sections": sections})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
