package strategy

import (
	"fmt"

	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/indicator"
)

// deviationUnit is the proportional distance from the SMA that one unit of
// stdDevs stands for. The threshold is stdDevs*2% of the SMA, not a z-score.
const deviationUnit = 0.02

func meanReversion(bars []core.Bar, ind *indicator.Set, p Params) []core.Signal {
	sma := ind.SMAOf(p.Period)
	threshold := p.StdDevs * deviationUnit
	signals := make([]core.Signal, len(bars))

	for i, bar := range bars {
		mean, ok := sma.At(i)
		if !ok || mean == 0 {
			signals[i] = core.Hold("Waiting for moving average")
			continue
		}

		deviation := (bar.Close - mean) / mean
		switch {
		case deviation < -threshold:
			signals[i] = core.Signal{
				Action: core.ActionBuy,
				Reason: fmt.Sprintf("Price %.2f%% below SMA%d", -deviation*100, p.Period),
			}
		case deviation > threshold:
			signals[i] = core.Signal{
				Action: core.ActionSell,
				Reason: fmt.Sprintf("Price %.2f%% above SMA%d", deviation*100, p.Period),
			}
		default:
			signals[i] = core.Hold("Price near mean")
		}
	}

	return signals
}
