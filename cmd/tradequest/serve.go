package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tradequest/tradequest/internal/api"
	"github.com/tradequest/tradequest/internal/api/job"
	"github.com/tradequest/tradequest/internal/metrics"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TradeQuest API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	var reg *metrics.Registry
	metricsPath := ""
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		metricsPath = cfg.Metrics.Path
	}

	engine, cleanup := buildEngine(cfg, log, reg)
	defer cleanup()

	deps := api.Dependencies{
		Jobs:    job.NewStore(cfg.Server.MaxJobs, cfg.Server.JobTTL(), job.WithMetrics(reg)),
		Runner:  engine,
		Metrics: reg,
	}

	results, err := buildArchive(cfg.Storage.Archive, log)
	if err != nil {
		return err
	}
	if results != nil {
		deps.Archive = results
		log.Info("archiving results", zap.String("type", cfg.Storage.Archive.Type))
	}

	explainer, err := buildInsight(cfg.LLM, log)
	if err != nil {
		return err
	}
	if explainer != nil {
		deps.Insight = explainer
		log.Info("insight enabled", zap.String("provider", cfg.LLM.Provider))
	}

	log.Info("starting TradeQuest server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("auth", cfg.Server.APIKey != ""),
	)

	server, err := api.NewServer(api.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		APIKey:          cfg.Server.APIKey,
		MetricsPath:     metricsPath,
		BacktestTimeout: cfg.Backtest.Timeout,
	}, deps, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Info("shutting down TradeQuest server", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	// Graceful shutdown waits for running backtests up to their timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Backtest.Timeout+30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
