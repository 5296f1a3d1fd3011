package strategy

import (
	"fmt"

	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/indicator"
)

func maCrossover(bars []core.Bar, ind *indicator.Set, p Params) []core.Signal {
	fastMA := ind.SMAOf(p.FastPeriod)
	slowMA := ind.SMAOf(p.SlowPeriod)
	signals := make([]core.Signal, len(bars))

	for i := range bars {
		prevFast, ok1 := fastMA.At(i - 1)
		prevSlow, ok2 := slowMA.At(i - 1)
		currFast, ok3 := fastMA.At(i)
		currSlow, ok4 := slowMA.At(i)
		if !(ok1 && ok2 && ok3 && ok4) {
			signals[i] = core.Hold("Waiting for moving averages")
			continue
		}

		switch {
		case prevFast <= prevSlow && currFast > currSlow:
			signals[i] = core.Signal{
				Action: core.ActionBuy,
				Reason: fmt.Sprintf("Golden cross: SMA%d (%.2f) crossed above SMA%d (%.2f)", p.FastPeriod, currFast, p.SlowPeriod, currSlow),
			}
		case prevFast >= prevSlow && currFast < currSlow:
			signals[i] = core.Signal{
				Action: core.ActionSell,
				Reason: fmt.Sprintf("Death cross: SMA%d (%.2f) crossed below SMA%d (%.2f)", p.FastPeriod, currFast, p.SlowPeriod, currSlow),
			}
		default:
			signals[i] = core.Hold("No crossover")
		}
	}

	return signals
}
