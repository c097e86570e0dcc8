// Package rest exposes the analysis engine over HTTP: one synchronous
// analyze endpoint plus health and Prometheus metrics.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mullbar/fraudgraph/internal/infrastructure/config"
)

// Server wraps the HTTP server with routing and graceful shutdown.
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wires the handler and middleware chain. The analyze route gets
// the full chain; health and metrics stay unauthenticated and unlimited so
// probes and scrapes never compete with uploads.
func NewServer(cfg *config.Config, handler *Handler, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	analyzeChain := chain(
		http.HandlerFunc(handler.Analyze),
		requestIDMiddleware,
		loggingMiddleware(logger),
		recoveryMiddleware(logger),
		rateLimitMiddleware(cfg.Security.RateLimit),
		authMiddleware(cfg.Security),
	)
	mux.Handle("POST /api/v1/analyze", analyzeChain)
	mux.Handle("GET /healthz", http.HandlerFunc(handler.Health))
	mux.Handle("GET /metrics", promhttp.Handler())

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      mux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: logger,
	}
}

// Run serves until the context is cancelled, then drains in-flight
// requests within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
