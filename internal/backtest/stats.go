package backtest

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/tradequest/tradequest/internal/core"
)

const (
	riskFreeRate       = 0.02
	tradingDays        = 252
	calendarDays       = 365
	profitFactorNoLoss = 999
)

// Analyze computes the performance statistics of a finished run. Only sell
// trades count as closed round trips.
func Analyze(trades []Trade, curve []EquityPoint, initialCapital float64, bars []core.Bar) Metrics {
	finalValue := initialCapital
	if len(curve) > 0 {
		finalValue = curve[len(curve)-1].Value
	}

	m := Metrics{
		InitialCapital: initialCapital,
		FinalValue:     finalValue,
		TotalReturn:    finalValue - initialCapital,
	}
	if initialCapital > 0 {
		m.TotalReturnPercent = (finalValue - initialCapital) / initialCapital * 100
		m.AnnualizedReturn = annualizedReturn(finalValue/initialCapital, spanDays(bars))
	}
	if len(curve) > 0 && initialCapital > 0 {
		m.BenchmarkReturn = (curve[len(curve)-1].Benchmark/initialCapital - 1) * 100
	}

	tradeStats(&m, trades)
	m.MaxDrawdown, m.MaxDrawdownPercent = calculateMaxDrawdown(curve)
	m.Volatility = calculateVolatility(curve)
	if m.Volatility != 0 {
		m.SharpeRatio = (m.AnnualizedReturn/100 - riskFreeRate) / (m.Volatility / 100)
	}
	if m.MaxDrawdownPercent != 0 {
		m.CalmarRatio = m.AnnualizedReturn / m.MaxDrawdownPercent
	}

	return m.rounded()
}

func spanDays(bars []core.Bar) float64 {
	if len(bars) < 2 {
		return 0
	}
	return bars[len(bars)-1].Date.Sub(bars[0].Date).Hours() / 24
}

// annualizedReturn returns the compound annual growth rate in percent
func annualizedReturn(growth, days float64) float64 {
	if days <= 0 || growth <= 0 {
		return 0
	}
	return (math.Pow(growth, calendarDays/days) - 1) * 100
}

func tradeStats(m *Metrics, trades []Trade) {
	var (
		sumWinPct, sumLossPct   float64
		grossProfit, grossLoss  float64
		largestWin, largestLoss float64
	)

	for _, t := range trades {
		if t.Type != core.ActionSell {
			continue
		}
		m.TotalTrades++
		if t.IsWin() {
			m.WinningTrades++
			sumWinPct += t.ProfitPercent
			grossProfit += t.Profit
			if m.WinningTrades == 1 || t.ProfitPercent > largestWin {
				largestWin = t.ProfitPercent
			}
			continue
		}
		m.LosingTrades++
		sumLossPct += t.ProfitPercent
		grossLoss += math.Abs(t.Profit)
		if m.LosingTrades == 1 || t.ProfitPercent < largestLoss {
			largestLoss = t.ProfitPercent
		}
	}

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	}
	if m.WinningTrades > 0 {
		m.AverageWin = sumWinPct / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = sumLossPct / float64(m.LosingTrades)
	}
	m.LargestWin, m.LargestLoss = largestWin, largestLoss

	switch {
	case grossLoss > 0:
		m.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		m.ProfitFactor = profitFactorNoLoss
	}
}

// calculateMaxDrawdown finds the largest peak-to-trough decline of the curve,
// in currency and in percent of the running peak. The two maxima are tracked
// independently and may come from different troughs.
func calculateMaxDrawdown(curve []EquityPoint) (amount, percent float64) {
	if len(curve) == 0 {
		return 0, 0
	}

	peak := curve[0].Value
	for _, p := range curve {
		if p.Value > peak {
			peak = p.Value
		}
		dd := peak - p.Value
		if dd > amount {
			amount = dd
		}
		if peak > 0 && dd/peak*100 > percent {
			percent = dd / peak * 100
		}
	}

	return amount, percent
}

// calculateVolatility annualizes the population standard deviation of
// bar-to-bar equity returns, in percent.
func calculateVolatility(curve []EquityPoint) float64 {
	var returns []float64
	for i := 1; i < len(curve); i++ {
		if prev := curve[i-1].Value; prev > 0 {
			returns = append(returns, curve[i].Value/prev-1)
		}
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(tradingDays) * 100
}

func (m Metrics) rounded() Metrics {
	for _, f := range []*float64{
		&m.InitialCapital, &m.FinalValue, &m.TotalReturn, &m.TotalReturnPercent,
		&m.AnnualizedReturn, &m.BenchmarkReturn, &m.WinRate, &m.AverageWin,
		&m.AverageLoss, &m.LargestWin, &m.LargestLoss, &m.ProfitFactor,
		&m.MaxDrawdown, &m.MaxDrawdownPercent, &m.Volatility, &m.SharpeRatio,
		&m.CalmarRatio,
	} {
		*f = round2(*f)
	}
	return m
}

// round2 rounds half away from zero to 2 decimals. Non-finite values become
// 0 so results always serialize.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
