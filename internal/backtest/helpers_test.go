package backtest

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/tradequest/tradequest/internal/core"
)

var day0 = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

func barsFromCloses(closes []float64) []core.Bar {
	bars := make([]core.Bar, len(closes))
	for i, c := range closes {
		bars[i] = core.Bar{
			Date:     day0.AddDate(0, 0, i),
			Open:     c,
			High:     c * 1.01,
			Low:      c * 0.99,
			Close:    c,
			AdjClose: c,
			Volume:   1000,
		}
	}
	return bars
}

// flatThenRamp is flat for flat bars, then rises by one per bar
func flatThenRamp(flat, ramp int) []float64 {
	closes := make([]float64, 0, flat+ramp)
	for i := 0; i < flat; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= ramp; i++ {
		closes = append(closes, 100+float64(i))
	}
	return closes
}

func wave(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		x := float64(i)
		closes[i] = 100 + 15*math.Sin(x/5) + 0.1*x
	}
	return closes
}

type stubProvider struct {
	mu    sync.Mutex
	bars  []core.Bar
	err   error
	calls int
}

func (s *stubProvider) FetchHistoricalData(_ context.Context, _ string, _, _ time.Time) ([]core.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.bars, nil
}

func (s *stubProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func baseOptions(strategy string) Options {
	return Options{
		Symbol:    "TEST",
		Strategy:  strategy,
		StartDate: day0,
		EndDate:   day0.AddDate(1, 0, 0),
	}
}
