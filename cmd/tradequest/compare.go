package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tradequest/tradequest/internal/backtest"
	"github.com/tradequest/tradequest/internal/strategy"
)

var (
	compareSymbol     string
	compareFrom       string
	compareTo         string
	compareCapital    float64
	compareStrategies []string
	compareOutput     string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare strategies on one symbol",
	Long:  "Run several strategies over the same history and rank them by total return",
	Args:  cobra.NoArgs,
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareSymbol, "symbol", "", "Symbol to backtest (required)")
	compareCmd.Flags().StringVar(&compareFrom, "from", "", "Start date YYYY-MM-DD (required)")
	compareCmd.Flags().StringVar(&compareTo, "to", "", "End date YYYY-MM-DD (required)")
	compareCmd.Flags().Float64Var(&compareCapital, "capital", 0, "Initial capital (default from config)")
	compareCmd.Flags().StringSliceVarP(&compareStrategies, "strategies", "s", nil, "Strategies to compare (default all)")
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "text", "Output format: text, json or yaml")
	costFlags(compareCmd)

	compareCmd.MarkFlagRequired("symbol")
	compareCmd.MarkFlagRequired("from")
	compareCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	start, end, err := parseRange(compareFrom, compareTo)
	if err != nil {
		return err
	}

	names := compareStrategies
	if len(names) == 0 {
		for _, k := range strategy.Kinds() {
			names = append(names, string(k))
		}
	}

	engine, cleanup := buildEngine(cfg, log, nil)
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Backtest.Timeout)
	defer cancel()

	base := backtest.Options{
		Symbol:         compareSymbol,
		StartDate:      start,
		EndDate:        end,
		InitialCapital: compareCapital,
	}
	if err := applyCosts(cmd, &base); err != nil {
		return err
	}

	results, err := engine.Compare(ctx, base, names)
	if err != nil {
		return fmt.Errorf("comparing strategies: %w", err)
	}

	if compareOutput == "text" {
		writeComparison(cmd.OutOrStdout(), results)
		return nil
	}
	return writeStructured(cmd.OutOrStdout(), compareOutput, results)
}
