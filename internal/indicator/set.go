package indicator

import "github.com/tradequest/tradequest/internal/core"

// Config selects the periods an indicator Set is computed at
type Config struct {
	SMAPeriods      []int
	EMAPeriods      []int
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerPeriod int
	BollingerStdDev float64
	ATRPeriod       int
}

// DefaultConfig returns the standard indicator periods
func DefaultConfig() Config {
	return Config{
		SMAPeriods:      []int{10, 20, 30},
		EMAPeriods:      []int{12, 26},
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerStdDev: 2,
		ATRPeriod:       14,
	}
}

// Set bundles every indicator computed for one run. All series have the
// same length as the bars they were computed from.
type Set struct {
	n         int
	SMA       map[int]Series
	EMA       map[int]Series
	RSI       Series
	MACD      MACDResult
	Bollinger BandsResult
	ATR       Series
}

// Compute calculates the full indicator set over bars
func Compute(bars []core.Bar, cfg Config) *Set {
	closes := core.Closes(bars)
	s := &Set{
		n:   len(bars),
		SMA: make(map[int]Series, len(cfg.SMAPeriods)),
		EMA: make(map[int]Series, len(cfg.EMAPeriods)),
	}
	for _, p := range cfg.SMAPeriods {
		if _, ok := s.SMA[p]; !ok {
			s.SMA[p] = SMA(closes, p)
		}
	}
	for _, p := range cfg.EMAPeriods {
		if _, ok := s.EMA[p]; !ok {
			s.EMA[p] = EMA(closes, p)
		}
	}
	s.RSI = RSI(closes, cfg.RSIPeriod)
	s.MACD = MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	s.Bollinger = Bollinger(closes, cfg.BollingerPeriod, cfg.BollingerStdDev)
	s.ATR = ATR(bars, cfg.ATRPeriod)
	return s
}

// Len returns the number of bars the set was computed over
func (s *Set) Len() int {
	return s.n
}

// SMAOf returns the SMA series at period, or an all-undefined series when
// that period was not configured.
func (s *Set) SMAOf(period int) Series {
	if series, ok := s.SMA[period]; ok {
		return series
	}
	return NewSeries(s.n)
}
