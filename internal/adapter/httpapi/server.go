// Package httpapi exposes the park status over HTTP for the rendering
// layer, plus the usual health, readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parquevivo/park-status-service/internal/service"
)

// EvaluationProvider serves cached evaluations and canned demo evaluations.
type EvaluationProvider interface {
	Latest() (service.Evaluation, bool)
	Demo(name string) (service.Evaluation, bool)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the status API and operational HTTP endpoints.
type Server struct {
	httpServer *http.Server
	provider   EvaluationProvider
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api/status, /healthz, /readyz, and
// /metrics routes. cacheTTL drives the freshness headers on /api/status and
// should match the refresh interval.
func NewServer(addr string, provider EvaluationProvider, cacheTTL time.Duration, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		cacheTTL: cacheTTL,
		logger:   logger,
	}

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleStatus serves the latest evaluation. A ?signal=none|active|soon|later
// query requests a canned demo signal instead of the real pipeline output.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	// The status page is embedded on third-party sites.
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if name := r.URL.Query().Get("signal"); name != "" {
		ev, ok := s.provider.Demo(name)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("unknown demo signal %q", name),
			})
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, ev)
		return
	}

	ev, ok := s.provider.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no evaluation available yet",
		})
		return
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.cacheTTL.Seconds())))
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
