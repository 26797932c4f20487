// Package httpserver exposes the operator-facing health, readiness, and
// metrics endpoints. It carries no authentication and no business logic; it
// exists so the orchestration platform has liveness/readiness probes and a
// Prometheus scrape target for the control loop's self-metrics.
package httpserver

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessCheck reports whether the engine is ready to serve: the Rule
// Store and template registry have completed their initial sync.
type ReadinessCheck func() bool

// Server is the minimal chi-routed health/metrics server.
type Server struct {
	srv   *http.Server
	log   logr.Logger
	ready atomic.Bool
}

// New builds a Server listening on addr. readiness is polled on every
// /readyz request rather than cached, since it's cheap and avoids a stale
// "ready" response after a dependency degrades.
func New(addr string, registry *prometheus.Registry, readiness ReadinessCheck, log logr.Logger) *Server {
	s := &Server{log: log.WithName("httpserver")}

	r := chi.NewRouter()
	// Health/metrics probes are commonly scraped from a different origin
	// (a dashboard, an aggregator) than the cluster's own API server.
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{http.MethodGet},
	}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if readiness != nil && !readiness() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the underlying router, for tests that exercise routes
// directly via httptest without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run starts serving and blocks until ctx is cancelled, at which point it
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
