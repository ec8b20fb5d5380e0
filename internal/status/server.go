// Package status serves a read-only HTTP view of the watcher.
//
// DESIGN: Two GET routes on a chi router:
//   - /healthz: liveness plus the follower phase
//   - /stats:   counter snapshot published by the watcher loop
//
// The server only reads atomics, so it can run beside the single-goroutine
// watcher loop without locking. It is off unless an address is configured.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/compresr/pool-watcher/internal/monitoring"
)

// HeaderRequestID carries the per-request ID.
const HeaderRequestID = "X-Request-ID"

// Server timeouts.
const (
	ReadTimeout  = 5 * time.Second
	WriteTimeout = 10 * time.Second
	IdleTimeout  = 60 * time.Second
)

// StateFunc reports the follower phase, e.g. tail.Follower.State().String().
type StateFunc func() string

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status   string `json:"status"`
	Follower string `json:"follower"`
	Time     string `json:"time"`
}

// Server is the status HTTP server.
type Server struct {
	srv           *http.Server
	metrics       *monitoring.MetricsCollector
	state         StateFunc
	requestLogger *monitoring.RequestLogger
	events        *monitoring.AlertManager
}

// New creates a status server listening on addr.
func New(addr string, mc *monitoring.MetricsCollector, state StateFunc) *Server {
	if mc == nil {
		mc = monitoring.NewMetricsCollector()
	}
	if state == nil {
		state = func() string { return "unknown" }
	}
	logger := monitoring.NewFromZerolog(log.Logger)
	s := &Server{
		metrics:       mc,
		state:         state,
		requestLogger: monitoring.NewRequestLogger(logger),
		events:        monitoring.NewAlertManager(logger),
	}
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.panicRecovery)
	r.Use(s.loggingMiddleware)
	r.Use(s.security)

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	log.Info().Str("addr", s.srv.Addr).Msg("status server starting")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Follower: s.state(),
		Time:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("failed to write status response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, msg string, status int) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
