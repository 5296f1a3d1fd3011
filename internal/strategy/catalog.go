package strategy

// Definition describes a built-in strategy
type Definition struct {
	Kind        Kind   `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Defaults    Params `json:"defaults" yaml:"defaults"`
}

var definitions = map[Kind]Definition{
	KindMACrossover: {
		Kind:        KindMACrossover,
		Name:        "Moving Average Crossover",
		Description: "Buy when the fast SMA crosses above the slow SMA, sell on the reverse cross",
		Defaults:    Params{FastPeriod: 10, SlowPeriod: 30},
	},
	KindRSIReversal: {
		Kind:        KindRSIReversal,
		Name:        "RSI Reversal",
		Description: "Buy when RSI is oversold, sell when RSI is overbought",
		Defaults:    Params{RSIPeriod: 14, Oversold: 30, Overbought: 70},
	},
	KindMACDCrossover: {
		Kind:        KindMACDCrossover,
		Name:        "MACD Crossover",
		Description: "Buy when the MACD line crosses above its signal line, sell on the reverse cross",
		Defaults:    Params{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9},
	},
	KindBollingerBands: {
		Kind:        KindBollingerBands,
		Name:        "Bollinger Bands",
		Description: "Buy when price closes below the lower band, sell when it closes above the upper band",
		Defaults:    Params{Period: 20, StdDev: 2},
	},
	KindBreakout: {
		Kind:        KindBreakout,
		Name:        "Breakout",
		Description: "Buy when price breaks above the recent high, sell when it breaks below the recent low",
		Defaults:    Params{LookbackPeriod: 20, BreakoutThreshold: 1.02},
	},
	KindMeanReversion: {
		Kind:        KindMeanReversion,
		Name:        "Mean Reversion",
		Description: "Buy when price is stretched below its moving average, sell when stretched above",
		Defaults:    Params{Period: 20, StdDevs: 2},
	},
}

// Lookup returns the definition for kind
func Lookup(kind Kind) (Definition, bool) {
	d, ok := definitions[kind]
	return d, ok
}

// Catalog returns all strategy definitions in display order
func Catalog() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, k := range Kinds() {
		out = append(out, definitions[k])
	}
	return out
}
