package indicator

// SMA calculates the Simple Moving Average over a trailing window.
// Indices before period-1 are undefined.
func SMA(prices []float64, period int) Series {
	result := NewSeries(len(prices))
	if period <= 0 || len(prices) < period {
		return result
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result.set(period-1, sum/float64(period))

	// Rolling calculation
	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result.set(i, sum/float64(period))
	}

	return result
}

// EMA calculates the Exponential Moving Average. The seed at period-1 is
// the SMA of the first period values.
func EMA(prices []float64, period int) Series {
	result := NewSeries(len(prices))
	if period <= 0 || len(prices) < period {
		return result
	}

	multiplier := 2.0 / float64(period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)
	result.set(period-1, ema)

	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		result.set(i, ema)
	}

	return result
}
