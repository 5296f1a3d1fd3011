package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradequest/tradequest/internal/backtest"
	"github.com/tradequest/tradequest/internal/core"
)

func sampleResult() *backtest.Result {
	day := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	return &backtest.Result{
		Symbol:     "AAPL",
		Strategy:   "ma_crossover",
		Parameters: map[string]any{"fastPeriod": 10.0, "slowPeriod": 30.0},
		Results:    backtest.Metrics{InitialCapital: 10000, FinalValue: 11000, TotalReturnPercent: 10},
		Trades: []backtest.Trade{
			{Date: day, Type: core.ActionBuy, Price: 100, Shares: 99, Value: 9900, Signal: "Golden cross"},
		},
		EquityCurve: []backtest.EquityPoint{{Date: day, Value: 10000, Benchmark: 10000}},
		DataPoints:  60,
	}
}

func TestResults_SaveLoad(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	results := NewResults(store, nil)
	ctx := context.Background()

	require.NoError(t, results.Save(ctx, "job-1", sampleResult()))

	exists, err := store.Exists(ctx, "backtests/job-1.json")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := results.Load(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 10.0, got.Results.TotalReturnPercent)
	require.Len(t, got.Trades, 1)
	assert.Equal(t, int64(99), got.Trades[0].Shares)
	assert.Equal(t, core.ActionBuy, got.Trades[0].Type)

	ids, err := results.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, ids)
}

func TestResults_LoadMissing(t *testing.T) {
	store, _ := NewLocalFS(t.TempDir())
	results := NewResults(store, nil)

	_, err := results.Load(context.Background(), "nope")
	assert.True(t, errors.Is(err, core.ErrJobNotFound))
}

func TestResults_InvalidID(t *testing.T) {
	store, _ := NewLocalFS(t.TempDir())
	results := NewResults(store, nil)

	err := results.Save(context.Background(), "../x", sampleResult())
	assert.True(t, errors.Is(err, core.ErrArchiveFailed))
}

func TestResultPath(t *testing.T) {
	assert.Equal(t, "backtests/abc.json", ResultPath("abc"))
}
