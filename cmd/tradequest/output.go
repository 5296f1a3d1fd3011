package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tradequest/tradequest/internal/backtest"
	"gopkg.in/yaml.v3"
)

// writeStructured renders v as json or yaml
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (expected text, json or yaml)", format)
	}
}

func writeResult(w io.Writer, r *backtest.Result) {
	m := r.Results
	fmt.Fprintln(w, "=== TradeQuest Backtest ===")
	fmt.Fprintf(w, "Strategy: %s\n", r.Strategy)
	fmt.Fprintf(w, "Symbol:   %s\n", r.Symbol)
	if n := len(r.EquityCurve); n > 0 {
		fmt.Fprintf(w, "Period:   %s to %s (%d bars)\n",
			r.EquityCurve[0].Date.Format("2006-01-02"),
			r.EquityCurve[n-1].Date.Format("2006-01-02"),
			r.DataPoints)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Initial capital\t%.2f\n", m.InitialCapital)
	fmt.Fprintf(tw, "Final value\t%.2f\n", m.FinalValue)
	fmt.Fprintf(tw, "Total return\t%.2f (%.2f%%)\n", m.TotalReturn, m.TotalReturnPercent)
	fmt.Fprintf(tw, "Annualized return\t%.2f%%\n", m.AnnualizedReturn)
	fmt.Fprintf(tw, "Buy and hold\t%.2f%%\n", m.BenchmarkReturn)
	fmt.Fprintf(tw, "Trades\t%d (%d won, %d lost)\n", m.TotalTrades, m.WinningTrades, m.LosingTrades)
	fmt.Fprintf(tw, "Win rate\t%.2f%%\n", m.WinRate)
	fmt.Fprintf(tw, "Profit factor\t%.2f\n", m.ProfitFactor)
	fmt.Fprintf(tw, "Max drawdown\t%.2f (%.2f%%)\n", m.MaxDrawdown, m.MaxDrawdownPercent)
	fmt.Fprintf(tw, "Volatility\t%.2f%%\n", m.Volatility)
	fmt.Fprintf(tw, "Sharpe ratio\t%.2f\n", m.SharpeRatio)
	fmt.Fprintf(tw, "Calmar ratio\t%.2f\n", m.CalmarRatio)
	tw.Flush()

	if len(r.Trades) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tPRICE\tSHARES\tPROFIT\tSIGNAL")
	for _, t := range r.Trades {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%.2f\t%s\n",
			t.Date.Format("2006-01-02"), t.Type, t.Price, t.Shares, t.Profit, t.Signal)
	}
	tw.Flush()
}

func writeComparison(w io.Writer, results []*backtest.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSTRATEGY\tRETURN %\tANNUALIZED %\tTRADES\tWIN RATE %\tMAX DD %\tSHARPE")
	for i, r := range results {
		m := r.Results
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%d\t%.2f\t%.2f\t%.2f\n",
			i+1, r.Strategy, m.TotalReturnPercent, m.AnnualizedReturn,
			m.TotalTrades, m.WinRate, m.MaxDrawdownPercent, m.SharpeRatio)
	}
	tw.Flush()
}
