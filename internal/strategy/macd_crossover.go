package strategy

import (
	"fmt"

	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/indicator"
)

func macdCrossover(bars []core.Bar, ind *indicator.Set, _ Params) []core.Signal {
	line, signal := ind.MACD.Line, ind.MACD.Signal
	signals := make([]core.Signal, len(bars))

	for i := range bars {
		prevLine, ok1 := line.At(i - 1)
		prevSignal, ok2 := signal.At(i - 1)
		currLine, ok3 := line.At(i)
		currSignal, ok4 := signal.At(i)
		if !(ok1 && ok2 && ok3 && ok4) {
			signals[i] = core.Hold("Waiting for MACD")
			continue
		}

		switch {
		case prevLine <= prevSignal && currLine > currSignal:
			signals[i] = core.Signal{
				Action: core.ActionBuy,
				Reason: fmt.Sprintf("MACD (%.4f) crossed above signal (%.4f)", currLine, currSignal),
			}
		case prevLine >= prevSignal && currLine < currSignal:
			signals[i] = core.Signal{
				Action: core.ActionSell,
				Reason: fmt.Sprintf("MACD (%.4f) crossed below signal (%.4f)", currLine, currSignal),
			}
		default:
			signals[i] = core.Hold("No MACD crossover")
		}
	}

	return signals
}
