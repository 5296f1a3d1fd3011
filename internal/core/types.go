package core

import (
	"math"
	"time"
)

// AssetClass tells the market data layer which family of sources serves a symbol
type AssetClass string

const (
	AssetStock  AssetClass = "stock"
	AssetCrypto AssetClass = "crypto"
)

// Bar represents one daily OHLCV period
type Bar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjClose"`
	Volume   int64     `json:"volume"`
}

// IsValid checks that all prices are positive finite numbers and volume is not negative
func (b Bar) IsValid() bool {
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return false
		}
	}
	return b.Volume >= 0 && !b.Date.IsZero()
}

// Day truncates t to midnight UTC of its calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Closes extracts the closing prices of bars
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Action represents a trading signal action
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Signal is the per-bar output of a strategy
type Signal struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`
}

// Hold returns a hold signal with the given reason
func Hold(reason string) Signal {
	return Signal{Action: ActionHold, Reason: reason}
}
