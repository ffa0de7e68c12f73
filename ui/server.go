// Package ui serves analysis results over HTTP: run JSON for tooling
// and a rendered report for people.
package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/orestischaral/water-temp-analysis/app"
	"github.com/orestischaral/water-temp-analysis/domain/core"
	"github.com/orestischaral/water-temp-analysis/domain/run"
	"github.com/orestischaral/water-temp-analysis/internal"
)

// RunSource supplies the run to serve. Both the Postgres repository and
// the file-backed artifact store satisfy it.
type RunSource interface {
	LatestRun(ctx context.Context) (*run.Run, error)
}

// Server hosts the result endpoints.
type Server struct {
	source RunSource
	logger *internal.Logger
	router chi.Router
}

// NewServer creates the HTTP server over the given run source.
func NewServer(source RunSource, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{source: source, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/runs/latest", s.handleLatestRun)
	r.Get("/api/runs/latest/locations/{name}", s.handleLocation)
	r.Get("/report", s.handleReport)

	s.router = r
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving HTTP on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("serving analysis results on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	rn, ok := s.latest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rn)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	rn, ok := s.latest(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	loc := rn.Location(name)
	if loc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown location " + name})
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// handleReport renders the markdown run report to HTML.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rn, ok := s.latest(w, r)
	if !ok {
		return
	}

	md := app.RenderReport(rn)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.CompletePage})
	html := markdown.ToHTML([]byte(md), p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}

func (s *Server) latest(w http.ResponseWriter, r *http.Request) (*run.Run, bool) {
	rn, err := s.source.LatestRun(r.Context())
	if err != nil {
		if core.IsNotFoundError(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed runs"})
			return nil, false
		}
		s.logger.Error("failed to load latest run: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load run"})
		return nil, false
	}
	return rn, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
