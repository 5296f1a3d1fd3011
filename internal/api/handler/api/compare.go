package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tradequest/tradequest/internal/api/response"
	"github.com/tradequest/tradequest/internal/backtest"
	"go.uber.org/zap"
)

// CompareRequest runs several strategies over one symbol. Strategies
// defaults to every built-in strategy.
type CompareRequest struct {
	Symbol         string   `json:"symbol" validate:"required,max=32"`
	Strategies     []string `json:"strategies" default:"[\"ma_crossover\",\"rsi_reversal\",\"macd_crossover\",\"bollinger_bands\",\"breakout\",\"mean_reversion\"]" validate:"min=1,dive,required"`
	StartDate      string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	InitialCapital float64  `json:"initialCapital" validate:"gte=0"`
}

// Ranking is one row of a comparison, best total return first
type Ranking struct {
	Rank               int     `json:"rank"`
	Strategy           string  `json:"strategy"`
	TotalReturnPercent float64 `json:"totalReturnPercent"`
	AnnualizedReturn   float64 `json:"annualizedReturn"`
	SharpeRatio        float64 `json:"sharpeRatio"`
	MaxDrawdownPercent float64 `json:"maxDrawdownPercent"`
	WinRate            float64 `json:"winRate"`
	TotalTrades        int     `json:"totalTrades"`
}

// CompareHandler handles synchronous strategy comparisons.
type CompareHandler struct {
	runner  Runner
	timeout time.Duration
	logger  *zap.Logger
}

func NewCompareHandler(runner Runner, timeout time.Duration, logger *zap.Logger) *CompareHandler {
	if timeout <= 0 {
		timeout = DefaultBacktestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompareHandler{runner: runner, timeout: timeout, logger: logger}
}

// Compare runs the requested strategies and returns them ranked.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		response.Fail(w, err)
		return
	}

	base := BacktestRequest{
		Symbol:         req.Symbol,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		InitialCapital: req.InitialCapital,
	}.Options()

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results, err := h.runner.Compare(ctx, base, req.Strategies)
	if err != nil {
		h.logger.Warn("compare failed", zap.String("symbol", req.Symbol), zap.Error(err))
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"symbol":   req.Symbol,
		"rankings": rank(results),
	})
}

func rank(results []*backtest.Result) []Ranking {
	out := make([]Ranking, len(results))
	for i, res := range results {
		m := res.Results
		out[i] = Ranking{
			Rank:               i + 1,
			Strategy:           res.Strategy,
			TotalReturnPercent: m.TotalReturnPercent,
			AnnualizedReturn:   m.AnnualizedReturn,
			SharpeRatio:        m.SharpeRatio,
			MaxDrawdownPercent: m.MaxDrawdownPercent,
			WinRate:            m.WinRate,
			TotalTrades:        m.TotalTrades,
		}
	}
	return out
}
