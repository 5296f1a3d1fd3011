package backtest

import (
	"math"
	"time"

	"github.com/tradequest/tradequest/internal/core"
)

const endOfBacktest = "End of backtest"

// position is the single open long. A zero shares count means flat.
type position struct {
	shares     int64
	entryPrice float64
	entryDate  time.Time
	reason     string
}

type simulator struct {
	commissionRate float64
	slippage       float64

	cash   float64
	pos    position
	trades []Trade
}

// simulate walks the bars once, acting only on the signal that fits the
// current state: buy when flat, sell when long. A position still open after
// the last bar is closed at that bar.
func simulate(bars []core.Bar, signals []core.Signal, initialCapital, commissionRate, slippage float64) ([]Trade, []EquityPoint) {
	s := &simulator{
		commissionRate: commissionRate,
		slippage:       slippage,
		cash:           initialCapital,
	}
	curve := make([]EquityPoint, 0, len(bars))
	firstClose := 0.0
	if len(bars) > 0 {
		firstClose = bars[0].Close
	}

	for i, bar := range bars {
		switch signals[i].Action {
		case core.ActionBuy:
			if s.pos.shares == 0 {
				s.buy(bar, signals[i].Reason)
			}
		case core.ActionSell:
			if s.pos.shares > 0 {
				s.sell(bar, signals[i].Reason)
			}
		}
		if i == len(bars)-1 && s.pos.shares > 0 {
			s.sell(bar, endOfBacktest)
		}

		point := EquityPoint{Date: bar.Date, Value: s.equity(bar.Close)}
		if firstClose > 0 {
			point.Benchmark = initialCapital * bar.Close / firstClose
		}
		curve = append(curve, point)
	}

	return s.trades, curve
}

func (s *simulator) equity(close float64) float64 {
	return s.cash + float64(s.pos.shares)*close
}

func (s *simulator) buy(bar core.Bar, reason string) {
	price := bar.Close * (1 + s.slippage)
	affordable := math.Floor(s.cash / price)
	commission := affordable * price * s.commissionRate
	shares := int64(math.Floor((s.cash - commission) / price))
	if shares <= 0 {
		return
	}

	cost := float64(shares)*price + commission
	s.cash -= cost
	s.pos = position{shares: shares, entryPrice: price, entryDate: bar.Date, reason: reason}
	s.trades = append(s.trades, Trade{
		Date:           bar.Date,
		Type:           core.ActionBuy,
		Price:          price,
		Shares:         shares,
		Value:          cost,
		Signal:         reason,
		PortfolioValue: s.equity(bar.Close),
	})
}

func (s *simulator) sell(bar core.Bar, reason string) {
	price := bar.Close * (1 - s.slippage)
	shares := s.pos.shares
	gross := float64(shares) * price
	commission := gross * s.commissionRate

	s.cash += gross - commission
	s.trades = append(s.trades, Trade{
		Date:           bar.Date,
		Type:           core.ActionSell,
		Price:          price,
		Shares:         shares,
		Value:          gross - commission,
		Signal:         reason,
		Profit:         (price-s.pos.entryPrice)*float64(shares) - commission,
		ProfitPercent:  (price/s.pos.entryPrice - 1) * 100,
		PortfolioValue: s.cash,
		EntrySignal:    s.pos.reason,
		HoldingDays:    int(bar.Date.Sub(s.pos.entryDate).Hours() / 24),
	})
	s.pos = position{}
}
