// Package api assembles the HTTP server: routes, middleware and lifecycle.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	handler "github.com/tradequest/tradequest/internal/api/handler/api"
	"github.com/tradequest/tradequest/internal/api/job"
	"github.com/tradequest/tradequest/internal/api/middleware"
	"github.com/tradequest/tradequest/internal/metrics"
	"go.uber.org/zap"
)

// Server represents the HTTP server for TradeQuest
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	backtests  *handler.BacktestHandler
}

// Config holds server configuration
type Config struct {
	Host            string
	Port            int
	APIKey          string
	MetricsPath     string // empty disables /metrics
	BacktestTimeout time.Duration
}

// Dependencies are the collaborators the handlers need. Archive, Insight and
// Metrics are optional.
type Dependencies struct {
	Jobs    *job.Store
	Runner  handler.Runner
	Archive handler.ResultArchive
	Insight handler.Explainer
	Metrics *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Runner == nil {
		return nil, fmt.Errorf("backtest runner required")
	}
	if deps.Jobs == nil {
		deps.Jobs = job.NewStore(0, 24*time.Hour, job.WithMetrics(deps.Metrics))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
	}
	s.setupRoutes(cfg, deps)

	var h http.Handler = mux
	h = metrics.HTTPMiddleware(deps.Metrics)(h)
	h = metrics.LoggingMiddleware(logger)(h)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.writeTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// writeTimeout leaves room for a synchronous compare to finish
func (c Config) writeTimeout() time.Duration {
	timeout := c.BacktestTimeout
	if timeout <= 0 {
		timeout = handler.DefaultBacktestTimeout
	}
	return timeout + 15*time.Second
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	auth := middleware.APIKeyAuth(cfg.APIKey)

	s.backtests = handler.NewBacktestHandler(deps.Jobs, deps.Runner, deps.Archive, cfg.BacktestTimeout, s.logger)
	compare := handler.NewCompareHandler(deps.Runner, cfg.BacktestTimeout, s.logger)
	insight := handler.NewInsightHandler(s.backtests, deps.Insight)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/backtests", s.backtests.Create)
	api.HandleFunc("GET /api/v1/backtests", s.backtests.List)
	api.HandleFunc("GET /api/v1/backtests/{id}", s.backtests.Get)
	api.HandleFunc("POST /api/v1/backtests/{id}/insight", insight.Create)
	api.HandleFunc("POST /api/v1/compare", compare.Compare)
	api.HandleFunc("GET /api/v1/strategies", handler.Strategies)
	s.mux.Handle("/api/v1/", auth(api))

	s.mux.HandleFunc("GET /health", s.handleHealth)
	if cfg.MetricsPath != "" && deps.Metrics != nil {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the fully wrapped root handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for running backtest jobs
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		s.backtests.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for backtest jobs: %w", ctx.Err())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
