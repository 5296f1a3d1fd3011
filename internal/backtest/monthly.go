package backtest

import (
	"sort"
	"time"

	"github.com/tradequest/tradequest/internal/core"
)

// Monthly groups sell trades by calendar month of the trade date. Return is
// the plain sum of profitPercent within the month.
func Monthly(trades []Trade) []MonthlyBucket {
	type key struct {
		year  int
		month time.Month
	}
	buckets := make(map[key]*MonthlyBucket)
	wins := make(map[key]int)

	for _, t := range trades {
		if t.Type != core.ActionSell {
			continue
		}
		k := key{t.Date.Year(), t.Date.Month()}
		b, ok := buckets[k]
		if !ok {
			b = &MonthlyBucket{Year: k.year, Month: int(k.month)}
			buckets[k] = b
		}
		b.Trades++
		b.Return += t.ProfitPercent
		if t.IsWin() {
			wins[k]++
		}
	}

	out := make([]MonthlyBucket, 0, len(buckets))
	for k, b := range buckets {
		b.Return = round2(b.Return)
		b.WinRate = round2(float64(wins[k]) / float64(b.Trades) * 100)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}
