package indicator

// RSI calculates the Relative Strength Index using a simple trailing average
// of gains and losses over the last period price changes. This is not
// Wilder's recursive smoothing; the two diverge after warmup.
func RSI(prices []float64, period int) Series {
	result := NewSeries(len(prices))
	if period <= 0 || len(prices) <= period {
		return result
	}

	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := period; i < len(prices); i++ {
		var gainSum, lossSum float64
		for j := i - period + 1; j <= i; j++ {
			gainSum += gains[j]
			lossSum += losses[j]
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)

		if avgLoss == 0 {
			result.set(i, 100)
			continue
		}
		rs := avgGain / avgLoss
		result.set(i, 100-100/(1+rs))
	}

	return result
}
