package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/tradequest/tradequest/internal/backtest"
)

// parseParams turns repeated key=value flags into strategy overrides.
// Numeric values are coerced; anything else is passed through as a string.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", pair)
		}
		value = strings.TrimSpace(value)
		if f, err := cast.ToFloat64E(value); err == nil {
			out[key] = f
		} else {
			out[key] = value
		}
	}
	return out, nil
}

// parseRange parses a YYYY-MM-DD date range
func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date format (expected YYYY-MM-DD): %w", err)
	}
	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date format (expected YYYY-MM-DD): %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date")
	}
	return start, end, nil
}

// costFlags registers the per-run commission and slippage overrides
func costFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("commission", 0, "Commission rate per trade, e.g. 0.001 (default from config)")
	cmd.Flags().Float64("slippage", 0, "Slippage per fill, e.g. 0.0005 (default from config)")
}

// changedFloat returns the flag's value only when it was given on the
// command line, so an explicit zero is kept apart from an absent flag
func changedFloat(cmd *cobra.Command, name string) (*float64, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// applyCosts copies the cost flags the user set onto opts
func applyCosts(cmd *cobra.Command, opts *backtest.Options) error {
	var err error
	if opts.CommissionRate, err = changedFloat(cmd, "commission"); err != nil {
		return err
	}
	opts.Slippage, err = changedFloat(cmd, "slippage")
	return err
}
