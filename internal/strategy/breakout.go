package strategy

import (
	"fmt"
	"math"

	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/indicator"
)

// breakout compares each close against the high/low range of the
// lookbackPeriod bars before it. The current bar is not part of the range.
func breakout(bars []core.Bar, _ *indicator.Set, p Params) []core.Signal {
	signals := make([]core.Signal, len(bars))

	for i, bar := range bars {
		if i < p.LookbackPeriod {
			signals[i] = core.Hold("Waiting for lookback window")
			continue
		}

		highest, lowest := math.Inf(-1), math.Inf(1)
		for _, prev := range bars[i-p.LookbackPeriod : i] {
			highest = math.Max(highest, prev.High)
			lowest = math.Min(lowest, prev.Low)
		}

		switch {
		case bar.Close > highest*p.BreakoutThreshold:
			signals[i] = core.Signal{
				Action: core.ActionBuy,
				Reason: fmt.Sprintf("Breakout: close %.2f above %d-bar high %.2f", bar.Close, p.LookbackPeriod, highest),
			}
		case bar.Close < lowest/p.BreakoutThreshold:
			signals[i] = core.Signal{
				Action: core.ActionSell,
				Reason: fmt.Sprintf("Breakdown: close %.2f below %d-bar low %.2f", bar.Close, p.LookbackPeriod, lowest),
			}
		default:
			signals[i] = core.Hold("Inside range")
		}
	}

	return signals
}
