package strategy

import (
	"fmt"
	"strings"

	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/indicator"
)

// Kind identifies one of the built-in signal generators
type Kind string

const (
	KindMACrossover    Kind = "ma_crossover"
	KindRSIReversal    Kind = "rsi_reversal"
	KindMACDCrossover  Kind = "macd_crossover"
	KindBollingerBands Kind = "bollinger_bands"
	KindBreakout       Kind = "breakout"
	KindMeanReversion  Kind = "mean_reversion"
)

// Kinds returns every strategy kind in display order
func Kinds() []Kind {
	return []Kind{
		KindMACrossover,
		KindRSIReversal,
		KindMACDCrossover,
		KindBollingerBands,
		KindBreakout,
		KindMeanReversion,
	}
}

// ParseKind resolves a strategy key. Unknown keys fail with ErrInvalidStrategy.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := definitions[k]; !ok {
		return "", core.WrapError(core.ErrInvalidStrategy, fmt.Errorf("%q is not one of %v", s, Kinds()))
	}
	return k, nil
}

// Func generates exactly one signal per bar. The signal at index i may only
// depend on bars and indicator values at indices <= i.
type Func func(bars []core.Bar, ind *indicator.Set, p Params) []core.Signal

// Generate dispatches to the signal generator for kind
func Generate(kind Kind, bars []core.Bar, ind *indicator.Set, p Params) ([]core.Signal, error) {
	var fn Func
	switch kind {
	case KindMACrossover:
		fn = maCrossover
	case KindRSIReversal:
		fn = rsiReversal
	case KindMACDCrossover:
		fn = macdCrossover
	case KindBollingerBands:
		fn = bollingerBands
	case KindBreakout:
		fn = breakout
	case KindMeanReversion:
		fn = meanReversion
	default:
		return nil, core.WrapError(core.ErrInvalidStrategy, fmt.Errorf("%q", kind))
	}
	return fn(bars, ind, p), nil
}
