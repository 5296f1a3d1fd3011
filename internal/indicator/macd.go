package indicator

// MACDResult holds the three MACD series
type MACDResult struct {
	Line      Series
	Signal    Series
	Histogram Series
}

// MACD calculates Moving Average Convergence Divergence. The signal line is
// an EMA over the defined MACD values, shifted back into place so every
// series keeps the input length.
func MACD(prices []float64, fast, slow, signalPeriod int) MACDResult {
	n := len(prices)
	res := MACDResult{
		Line:      NewSeries(n),
		Signal:    NewSeries(n),
		Histogram: NewSeries(n),
	}

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)
	for i := 0; i < n; i++ {
		f, okF := fastEMA.At(i)
		s, okS := slowEMA.At(i)
		if okF && okS {
			res.Line.set(i, f-s)
		}
	}

	compact := res.Line.Compact()
	signal := EMA(compact, signalPeriod)
	offset := n - len(compact)
	for i, v := range signal {
		if v.Valid {
			res.Signal.set(i+offset, v.Val)
		}
	}

	for i := 0; i < n; i++ {
		l, okL := res.Line.At(i)
		s, okS := res.Signal.At(i)
		if okL && okS {
			res.Histogram.set(i, l-s)
		}
	}

	return res
}
