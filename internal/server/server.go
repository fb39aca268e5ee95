package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agbru/tallyrun/internal/logging"
	"github.com/agbru/tallyrun/internal/orchestration"
	"github.com/agbru/tallyrun/internal/progress"
)

const shutdownTimeout = 5 * time.Second

// GenerationSource returns the live generation, or nil.
// *orchestration.Coordinator satisfies it.
type GenerationSource interface {
	Current() *orchestration.Generation
}

// BoardSource returns the display state. *progress.Board satisfies it.
type BoardSource interface {
	Snapshot() progress.BoardSnapshot
}

// Status is the document served on /status.
type Status struct {
	Generation *orchestration.GenerationSnapshot `json:"generation,omitempty"`
	Display    progress.BoardSnapshot            `json:"display"`
	Delivered  int64                             `json:"delivered_events"`
	Stale      int64                             `json:"stale_events"`
}

// StatsSource reports dispatcher counters. Optional.
type StatsSource interface {
	Stats() (delivered, stale int64)
}

// Server serves the read-only HTTP view of a run.
type Server struct {
	router      chi.Router
	metrics     *Metrics
	logger      logging.Logger
	security    SecurityConfig
	generations GenerationSource
	board       BoardSource
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSecurityConfig overrides DefaultSecurityConfig.
func WithSecurityConfig(c SecurityConfig) Option {
	return func(s *Server) { s.security = c }
}

// New builds the router. Either source may be nil.
func New(m *Metrics, gens GenerationSource, board BoardSource, opts ...Option) *Server {
	if m == nil {
		m = NewMetrics()
	}
	s := &Server{
		metrics:     m,
		logger:      logging.Nop(),
		security:    DefaultSecurityConfig(),
		generations: gens,
		board:       board,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.security.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.security.RequestTimeout))
	}
	r.Get("/healthz", s.wrap(s.handleHealth))
	r.HandleFunc("/status", s.wrap(s.handleStatus))
	r.HandleFunc("/metrics", s.wrap(s.handleMetrics))
	s.router = r
	return s
}

// Handler returns the router for use with http.Server or httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", logging.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// wrap applies the security headers and request metrics to h.
func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	return SecurityMiddleware(s.security, s.metricsMiddleware(h))
}

func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		start := time.Now()
		next(w, r)

		route := "unknown"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.metrics.ObserveRequest(r.Method, route, time.Since(start))
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.logger.Info("metrics: method not allowed", logging.String("method", r.Method))
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) status() Status {
	var st Status
	if s.generations != nil {
		if gen := s.generations.Current(); gen != nil {
			snap := gen.Snapshot()
			st.Generation = &snap
		}
		if stats, ok := s.generations.(StatsSource); ok {
			st.Delivered, st.Stale = stats.Stats()
		}
	}
	if s.board != nil {
		st.Display = s.board.Snapshot()
	}
	return st
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
