package strategy

import (
	"fmt"

	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/indicator"
)

func rsiReversal(bars []core.Bar, ind *indicator.Set, p Params) []core.Signal {
	signals := make([]core.Signal, len(bars))

	for i := range bars {
		rsi, ok := ind.RSI.At(i)
		if !ok {
			signals[i] = core.Hold("Waiting for RSI")
			continue
		}

		switch {
		case rsi < p.Oversold:
			signals[i] = core.Signal{
				Action: core.ActionBuy,
				Reason: fmt.Sprintf("RSI %.2f below oversold level %.0f", rsi, p.Oversold),
			}
		case rsi > p.Overbought:
			signals[i] = core.Signal{
				Action: core.ActionSell,
				Reason: fmt.Sprintf("RSI %.2f above overbought level %.0f", rsi, p.Overbought),
			}
		default:
			signals[i] = core.Hold(fmt.Sprintf("RSI %.2f in neutral range", rsi))
		}
	}

	return signals
}
