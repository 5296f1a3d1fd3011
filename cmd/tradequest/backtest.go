package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tradequest/tradequest/internal/backtest"
	"go.uber.org/zap"
)

var (
	backtestSymbol  string
	backtestFrom    string
	backtestTo      string
	backtestCapital float64
	backtestParams  []string
	backtestOutput  string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run backtest on a strategy",
	Long:  "Run a strategy against historical data and show performance statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Symbol to backtest (required)")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (required)")
	backtestCmd.Flags().Float64Var(&backtestCapital, "capital", 0, "Initial capital (default from config)")
	backtestCmd.Flags().StringArrayVarP(&backtestParams, "param", "p", nil, "Strategy parameter override key=value (repeatable)")
	backtestCmd.Flags().StringVarP(&backtestOutput, "output", "o", "text", "Output format: text, json or yaml")
	costFlags(backtestCmd)

	backtestCmd.MarkFlagRequired("symbol")
	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	start, end, err := parseRange(backtestFrom, backtestTo)
	if err != nil {
		return err
	}
	params, err := parseParams(backtestParams)
	if err != nil {
		return err
	}

	engine, cleanup := buildEngine(cfg, log, nil)
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Backtest.Timeout)
	defer cancel()

	opts := backtest.Options{
		Symbol:         backtestSymbol,
		Strategy:       args[0],
		StartDate:      start,
		EndDate:        end,
		InitialCapital: backtestCapital,
		Parameters:     params,
	}
	if err := applyCosts(cmd, &opts); err != nil {
		return err
	}

	result, err := engine.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("running backtest: %w", err)
	}
	log.Debug("backtest finished", zap.Int("trades", len(result.Trades)))

	if backtestOutput == "text" {
		writeResult(cmd.OutOrStdout(), result)
		return nil
	}
	return writeStructured(cmd.OutOrStdout(), backtestOutput, result)
}
