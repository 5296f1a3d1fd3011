package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tradequest/tradequest/internal/core"
)

func sells(profits ...float64) []Trade {
	var trades []Trade
	for _, p := range profits {
		trades = append(trades,
			Trade{Type: core.ActionBuy},
			Trade{Type: core.ActionSell, Profit: p, ProfitPercent: p / 10},
		)
	}
	return trades
}

func curveOf(values ...float64) []EquityPoint {
	curve := make([]EquityPoint, len(values))
	for i, v := range values {
		curve[i] = EquityPoint{Date: day0.AddDate(0, 0, i), Value: v, Benchmark: v}
	}
	return curve
}

func TestTradeStats(t *testing.T) {
	var m Metrics
	tradeStats(&m, sells(100, 50, -30, 0))

	assert.Equal(t, 4, m.TotalTrades, "only sells are counted")
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 2, m.LosingTrades)
	assert.Equal(t, 50.0, m.WinRate)
	assert.InDelta(t, 7.5, m.AverageWin, 1e-9)
	assert.InDelta(t, -1.5, m.AverageLoss, 1e-9)
	assert.InDelta(t, 10, m.LargestWin, 1e-9)
	assert.InDelta(t, -3, m.LargestLoss, 1e-9)
	assert.InDelta(t, 5, m.ProfitFactor, 1e-9)
}

func TestTradeStats_ProfitFactorFallbacks(t *testing.T) {
	var noLoss Metrics
	tradeStats(&noLoss, sells(10, 20))
	assert.Equal(t, 999.0, noLoss.ProfitFactor)
	assert.Equal(t, 100.0, noLoss.WinRate)
	assert.Zero(t, noLoss.LargestLoss)

	var none Metrics
	tradeStats(&none, nil)
	assert.Zero(t, none.ProfitFactor)
	assert.Zero(t, none.WinRate)

	var allLoss Metrics
	tradeStats(&allLoss, sells(-10, -20))
	assert.Zero(t, allLoss.ProfitFactor)
	assert.Zero(t, allLoss.LargestWin)
	assert.InDelta(t, -2, allLoss.LargestLoss, 1e-9)
}

func TestCalculateMaxDrawdown(t *testing.T) {
	tests := []struct {
		name        string
		values      []float64
		wantAmount  float64
		wantPercent float64
	}{
		{"empty", nil, 0, 0},
		{"non-decreasing", []float64{100, 100, 110, 120}, 0, 0},
		{"two troughs", []float64{100, 120, 90, 130, 65}, 65, 50},
		// the larger currency drop is the smaller percentage drop
		{"independent maxima", []float64{1000, 500, 10000, 9000}, 1000, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, percent := calculateMaxDrawdown(curveOf(tt.values...))
			assert.InDelta(t, tt.wantAmount, amount, 1e-9)
			assert.InDelta(t, tt.wantPercent, percent, 1e-9)
		})
	}
}

func TestCalculateVolatility(t *testing.T) {
	assert.Zero(t, calculateVolatility(curveOf(100, 100, 100, 100)))
	assert.Zero(t, calculateVolatility(curveOf(100, 110)), "one return has no spread")

	// returns +10% and -10%: population stdev 0.1
	want := 0.1 * math.Sqrt(252) * 100
	assert.InDelta(t, want, calculateVolatility(curveOf(100, 110, 99)), 1e-9)
}

func TestAnnualizedReturn(t *testing.T) {
	assert.InDelta(t, 10, annualizedReturn(1.21, 730), 1e-9)
	assert.InDelta(t, 21, annualizedReturn(1.21, 365), 1e-9)
	assert.Zero(t, annualizedReturn(1.5, 0))
	assert.Zero(t, annualizedReturn(0, 365))
}

func TestAnalyze(t *testing.T) {
	bars := []core.Bar{{Date: day0, Close: 1}, {Date: day0.AddDate(0, 0, 365), Close: 1}}
	curve := []EquityPoint{
		{Date: bars[0].Date, Value: 10000, Benchmark: 10000},
		{Date: bars[1].Date, Value: 11000, Benchmark: 10500},
	}

	m := Analyze(sells(1000), curve, 10000, bars)

	assert.Equal(t, 10000.0, m.InitialCapital)
	assert.Equal(t, 11000.0, m.FinalValue)
	assert.Equal(t, 1000.0, m.TotalReturn)
	assert.Equal(t, 10.0, m.TotalReturnPercent)
	assert.Equal(t, 10.0, m.AnnualizedReturn)
	assert.Equal(t, 5.0, m.BenchmarkReturn)
	assert.Equal(t, 1, m.TotalTrades)
	assert.Equal(t, 100.0, m.WinRate)
	assert.Zero(t, m.Volatility)
	assert.Zero(t, m.SharpeRatio, "zero volatility means zero sharpe")
	assert.Zero(t, m.MaxDrawdownPercent)
	assert.Zero(t, m.CalmarRatio, "zero drawdown means zero calmar")
}

func TestAnalyze_SharpeAndCalmar(t *testing.T) {
	bars := barsFromCloses(make([]float64, 4))
	curve := curveOf(10000, 11000, 9900, 12000)

	m := Analyze(nil, curve, 10000, bars)

	days := 3.0
	ann := (math.Pow(1.2, 365/days) - 1) * 100
	vol := calculateVolatility(curve)
	_, ddPct := calculateMaxDrawdown(curve)

	assert.Equal(t, round2((ann/100-0.02)/(vol/100)), m.SharpeRatio)
	assert.Equal(t, round2(ann/ddPct), m.CalmarRatio)
	assert.Equal(t, 10.0, m.MaxDrawdownPercent)
	assert.Equal(t, 1100.0, m.MaxDrawdown)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, round2(1.005))
	assert.Equal(t, -2.35, round2(-2.345))
	assert.Equal(t, 3.0, round2(2.999))
	assert.Zero(t, round2(math.NaN()))
	assert.Zero(t, round2(math.Inf(1)))
}
