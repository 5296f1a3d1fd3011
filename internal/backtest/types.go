package backtest

import (
	"time"

	"github.com/tradequest/tradequest/internal/core"
)

const (
	DefaultInitialCapital = 10000.0
	DefaultCommissionRate = 0.001
	DefaultSlippage       = 0.0005
	// MinBars is the shortest history a run accepts.
	MinBars = 50
)

// Options describes one backtest run
type Options struct {
	Symbol         string         `json:"symbol" yaml:"symbol"`
	Strategy       string         `json:"strategy" yaml:"strategy"`
	StartDate      time.Time      `json:"startDate" yaml:"startDate"`
	EndDate        time.Time      `json:"endDate" yaml:"endDate"`
	InitialCapital float64        `json:"initialCapital" yaml:"initialCapital"`
	Parameters     map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	// CommissionRate and Slippage fall back to the engine defaults when nil.
	// An explicit zero runs without costs.
	CommissionRate *float64 `json:"commissionRate,omitempty" yaml:"commissionRate,omitempty"`
	Slippage       *float64 `json:"slippage,omitempty" yaml:"slippage,omitempty"`
}

// Float returns a pointer to v, for the optional cost fields of Options
func Float(v float64) *float64 {
	return &v
}

// Trade is one entry in the realized ledger. Profit and entry fields are
// zero on buys.
type Trade struct {
	Date           time.Time   `json:"date" yaml:"date"`
	Type           core.Action `json:"type" yaml:"type"`
	Price          float64     `json:"price" yaml:"price"`
	Shares         int64       `json:"shares" yaml:"shares"`
	Value          float64     `json:"value" yaml:"value"`
	Signal         string      `json:"signal" yaml:"signal"`
	Profit         float64     `json:"profit" yaml:"profit"`
	ProfitPercent  float64     `json:"profitPercent" yaml:"profitPercent"`
	PortfolioValue float64     `json:"portfolioValue" yaml:"portfolioValue"`
	EntrySignal    string      `json:"entrySignal,omitempty" yaml:"entrySignal,omitempty"`
	HoldingDays    int         `json:"holdingDays,omitempty" yaml:"holdingDays,omitempty"`
}

// EquityPoint is the mark-to-market portfolio value at one bar
type EquityPoint struct {
	Date      time.Time `json:"date" yaml:"date"`
	Value     float64   `json:"value" yaml:"value"`
	Benchmark float64   `json:"benchmark" yaml:"benchmark"`
}

// Metrics holds the performance statistics of a run. Percent fields are in
// percent units; everything except counts is rounded to 2 decimals.
type Metrics struct {
	InitialCapital     float64 `json:"initialCapital" yaml:"initialCapital"`
	FinalValue         float64 `json:"finalValue" yaml:"finalValue"`
	TotalReturn        float64 `json:"totalReturn" yaml:"totalReturn"`
	TotalReturnPercent float64 `json:"totalReturnPercent" yaml:"totalReturnPercent"`
	AnnualizedReturn   float64 `json:"annualizedReturn" yaml:"annualizedReturn"`
	BenchmarkReturn    float64 `json:"benchmarkReturnPercent" yaml:"benchmarkReturnPercent"`

	TotalTrades   int     `json:"totalTrades" yaml:"totalTrades"`
	WinningTrades int     `json:"winningTrades" yaml:"winningTrades"`
	LosingTrades  int     `json:"losingTrades" yaml:"losingTrades"`
	WinRate       float64 `json:"winRate" yaml:"winRate"`
	AverageWin    float64 `json:"averageWin" yaml:"averageWin"`
	AverageLoss   float64 `json:"averageLoss" yaml:"averageLoss"`
	LargestWin    float64 `json:"largestWin" yaml:"largestWin"`
	LargestLoss   float64 `json:"largestLoss" yaml:"largestLoss"`
	ProfitFactor  float64 `json:"profitFactor" yaml:"profitFactor"`

	MaxDrawdown        float64 `json:"maxDrawdown" yaml:"maxDrawdown"`
	MaxDrawdownPercent float64 `json:"maxDrawdownPercent" yaml:"maxDrawdownPercent"`
	Volatility         float64 `json:"volatility" yaml:"volatility"`
	SharpeRatio        float64 `json:"sharpeRatio" yaml:"sharpeRatio"`
	CalmarRatio        float64 `json:"calmarRatio" yaml:"calmarRatio"`
}

// MonthlyBucket aggregates the closed trades of one calendar month
type MonthlyBucket struct {
	Year    int     `json:"year" yaml:"year"`
	Month   int     `json:"month" yaml:"month"`
	Trades  int     `json:"trades" yaml:"trades"`
	Return  float64 `json:"return" yaml:"return"`
	WinRate float64 `json:"winRate" yaml:"winRate"`
}

// Result is the complete output of a run
type Result struct {
	Symbol             string          `json:"symbol" yaml:"symbol"`
	Strategy           string          `json:"strategy" yaml:"strategy"`
	Parameters         any             `json:"parameters" yaml:"parameters"`
	Results            Metrics         `json:"results" yaml:"results"`
	Trades             []Trade         `json:"trades" yaml:"trades"`
	EquityCurve        []EquityPoint   `json:"equityCurve" yaml:"equityCurve"`
	MonthlyPerformance []MonthlyBucket `json:"monthlyPerformance" yaml:"monthlyPerformance"`
	DataPoints         int             `json:"dataPoints" yaml:"dataPoints"`
}

// IsWin reports whether a closed trade made money after costs
func (t Trade) IsWin() bool {
	return t.Type == core.ActionSell && t.Profit > 0
}
