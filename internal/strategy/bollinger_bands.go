package strategy

import (
	"fmt"

	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/indicator"
)

func bollingerBands(bars []core.Bar, ind *indicator.Set, _ Params) []core.Signal {
	signals := make([]core.Signal, len(bars))

	for i, bar := range bars {
		upper, okU := ind.Bollinger.Upper.At(i)
		lower, okL := ind.Bollinger.Lower.At(i)
		if !okU || !okL {
			signals[i] = core.Hold("Waiting for Bollinger Bands")
			continue
		}

		switch {
		case bar.Close < lower:
			signals[i] = core.Signal{
				Action: core.ActionBuy,
				Reason: fmt.Sprintf("Close %.2f below lower band %.2f", bar.Close, lower),
			}
		case bar.Close > upper:
			signals[i] = core.Signal{
				Action: core.ActionSell,
				Reason: fmt.Sprintf("Close %.2f above upper band %.2f", bar.Close, upper),
			}
		default:
			signals[i] = core.Hold("Price within bands")
		}
	}

	return signals
}
