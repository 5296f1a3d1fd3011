package indicator

import "math"

// BandsResult holds Bollinger Band series
type BandsResult struct {
	Upper  Series
	Middle Series
	Lower  Series
}

// Bollinger calculates Bollinger Bands: SMA(period) plus/minus stdDev times
// the population standard deviation of the same window.
func Bollinger(prices []float64, period int, stdDev float64) BandsResult {
	n := len(prices)
	res := BandsResult{
		Upper:  NewSeries(n),
		Middle: SMA(prices, period),
		Lower:  NewSeries(n),
	}

	for i := 0; i < n; i++ {
		mean, ok := res.Middle.At(i)
		if !ok {
			continue
		}
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			d := prices[j] - mean
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		res.Upper.set(i, mean+stdDev*sd)
		res.Lower.set(i, mean-stdDev*sd)
	}

	return res
}
