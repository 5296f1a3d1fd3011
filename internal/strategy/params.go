package strategy

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/indicator"
)

// Params holds the resolved parameters of one run. Fields a strategy does
// not use stay at zero.
type Params struct {
	FastPeriod        int     `json:"fastPeriod,omitempty" yaml:"fastPeriod,omitempty" mapstructure:"fastPeriod"`
	SlowPeriod        int     `json:"slowPeriod,omitempty" yaml:"slowPeriod,omitempty" mapstructure:"slowPeriod"`
	SignalPeriod      int     `json:"signalPeriod,omitempty" yaml:"signalPeriod,omitempty" mapstructure:"signalPeriod"`
	RSIPeriod         int     `json:"rsiPeriod,omitempty" yaml:"rsiPeriod,omitempty" mapstructure:"rsiPeriod"`
	Oversold          float64 `json:"oversold,omitempty" yaml:"oversold,omitempty" mapstructure:"oversold"`
	Overbought        float64 `json:"overbought,omitempty" yaml:"overbought,omitempty" mapstructure:"overbought"`
	Period            int     `json:"period,omitempty" yaml:"period,omitempty" mapstructure:"period"`
	StdDev            float64 `json:"stdDev,omitempty" yaml:"stdDev,omitempty" mapstructure:"stdDev"`
	LookbackPeriod    int     `json:"lookbackPeriod,omitempty" yaml:"lookbackPeriod,omitempty" mapstructure:"lookbackPeriod"`
	BreakoutThreshold float64 `json:"breakoutThreshold,omitempty" yaml:"breakoutThreshold,omitempty" mapstructure:"breakoutThreshold"`
	StdDevs           float64 `json:"stdDevs,omitempty" yaml:"stdDevs,omitempty" mapstructure:"stdDevs"`
}

// Resolve merges caller overrides onto the defaults for kind. Overrides are
// weakly typed so JSON numbers and CLI strings both decode. Keys the strategy
// does not read and fractional values for whole-number periods are rejected.
func Resolve(kind Kind, overrides map[string]any) (Params, error) {
	def, ok := definitions[kind]
	if !ok {
		return Params{}, core.WrapError(core.ErrInvalidStrategy, fmt.Errorf("%q", kind))
	}

	p := def.Defaults
	if len(overrides) > 0 {
		known := def.paramNames()
		for _, key := range slices.Sorted(maps.Keys(overrides)) {
			if !known[key] {
				return Params{}, core.WrapError(core.ErrInvalidRequest,
					fmt.Errorf("unknown parameter %q for %s (accepted: %s)",
						key, kind, strings.Join(slices.Sorted(maps.Keys(known)), ", ")))
			}
		}

		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &p,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			TagName:          "mapstructure",
			DecodeHook:       wholeNumbers,
		})
		if err != nil {
			return Params{}, err
		}
		if err := dec.Decode(overrides); err != nil {
			return Params{}, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("decoding parameters: %w", err))
		}
	}

	if err := p.validate(kind); err != nil {
		return Params{}, core.WrapError(core.ErrInvalidRequest, err)
	}
	return p, nil
}

// wholeNumbers refuses to truncate a fractional float into an int field
func wholeNumbers(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}
	if f, ok := data.(float64); ok && f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not a whole number", f)
	}
	return data, nil
}

// paramNames returns the parameter keys the strategy reads, which are the
// ones its defaults set
func (d Definition) paramNames() map[string]bool {
	var all map[string]any
	if err := mapstructure.Decode(d.Defaults, &all); err != nil {
		return nil
	}
	names := make(map[string]bool, len(all))
	for k, v := range all {
		if !reflect.ValueOf(v).IsZero() {
			names[k] = true
		}
	}
	return names
}

func (p Params) validate(kind Kind) error {
	positive := func(name string, v float64) error {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, v)
		}
		return nil
	}

	var checks []error
	switch kind {
	case KindMACrossover:
		checks = append(checks,
			positive("fastPeriod", float64(p.FastPeriod)),
			positive("slowPeriod", float64(p.SlowPeriod)))
	case KindRSIReversal:
		checks = append(checks, positive("rsiPeriod", float64(p.RSIPeriod)))
		if p.Oversold >= p.Overbought {
			checks = append(checks, fmt.Errorf("oversold (%v) must be below overbought (%v)", p.Oversold, p.Overbought))
		}
	case KindMACDCrossover:
		checks = append(checks,
			positive("fastPeriod", float64(p.FastPeriod)),
			positive("slowPeriod", float64(p.SlowPeriod)),
			positive("signalPeriod", float64(p.SignalPeriod)))
	case KindBollingerBands:
		checks = append(checks,
			positive("period", float64(p.Period)),
			positive("stdDev", p.StdDev))
	case KindBreakout:
		checks = append(checks,
			positive("lookbackPeriod", float64(p.LookbackPeriod)),
			positive("breakoutThreshold", p.BreakoutThreshold))
	case KindMeanReversion:
		checks = append(checks,
			positive("period", float64(p.Period)),
			positive("stdDevs", p.StdDevs))
	}

	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// IndicatorConfig returns the indicator periods a run of kind needs on top
// of the standard set.
func (p Params) IndicatorConfig(kind Kind) indicator.Config {
	cfg := indicator.DefaultConfig()
	switch kind {
	case KindMACrossover:
		cfg.SMAPeriods = append(cfg.SMAPeriods, p.FastPeriod, p.SlowPeriod)
	case KindRSIReversal:
		cfg.RSIPeriod = p.RSIPeriod
	case KindMACDCrossover:
		cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal = p.FastPeriod, p.SlowPeriod, p.SignalPeriod
	case KindBollingerBands:
		cfg.BollingerPeriod, cfg.BollingerStdDev = p.Period, p.StdDev
	case KindMeanReversion:
		cfg.SMAPeriods = append(cfg.SMAPeriods, p.Period)
	}
	return cfg
}
