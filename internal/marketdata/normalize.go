package marketdata

import (
	"sort"
	"time"

	"github.com/tradequest/tradequest/internal/core"
)

// Normalize turns raw source output into a clean daily series: dates are
// truncated to UTC days, bars outside [start, end] and bars with unusable
// prices are dropped, negative volume is clamped to zero, a missing adjClose
// takes the close, and duplicate dates keep the last bar seen.
func Normalize(bars []core.Bar, start, end time.Time) []core.Bar {
	from, to := core.Day(start), core.Day(end)

	out := make([]core.Bar, 0, len(bars))
	for _, b := range bars {
		b.Date = core.Day(b.Date)
		if b.Volume < 0 {
			b.Volume = 0
		}
		if b.AdjClose <= 0 {
			b.AdjClose = b.Close
		}
		if !b.IsValid() {
			continue
		}
		if (!start.IsZero() && b.Date.Before(from)) || (!end.IsZero() && b.Date.After(to)) {
			continue
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	deduped := out[:0]
	for _, b := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(b.Date) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	return deduped
}
