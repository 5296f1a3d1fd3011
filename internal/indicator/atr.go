package indicator

import (
	"math"

	"github.com/tradequest/tradequest/internal/core"
)

// TrueRange returns the true range of every bar. The first bar has no
// previous close, so its range is high minus low.
func TrueRange(bars []core.Bar) []float64 {
	tr := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			tr[i] = b.High - b.Low
			continue
		}
		prevClose := bars[i-1].Close
		tr[i] = math.Max(b.High-b.Low,
			math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
	}
	return tr
}

// ATR calculates Average True Range as the SMA of true range
func ATR(bars []core.Bar, period int) Series {
	return SMA(TrueRange(bars), period)
}
