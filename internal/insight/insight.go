// Package insight asks an LLM for a short plain-language reading of a
// completed backtest.
package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tradequest/tradequest/internal/backtest"
	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/llm"
	"go.uber.org/zap"
)

const systemPrompt = `You are a trading coach reviewing a historical strategy backtest for a retail investor.
Write three short paragraphs: how the strategy performed against buy-and-hold, what the risk
figures (drawdown, volatility, Sharpe) say, and one concrete parameter or rule to try next.
Use plain language and the numbers given. Do not give financial advice or predict future prices.`

// sampleTrades caps how many closing trades are quoted in the prompt
const sampleTrades = 10

// Insight is the generated narrative
type Insight struct {
	Provider    string    `json:"provider"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Service explains backtest results with an LLM provider
type Service struct {
	llm    llm.Provider
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Service. A nil provider yields core.ErrLLMDisabled from Explain.
func New(provider llm.Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{llm: provider, logger: logger, now: time.Now}
}

// Enabled reports whether a provider is configured
func (s *Service) Enabled() bool {
	return s != nil && s.llm != nil
}

// Explain generates a narrative for result
func (s *Service) Explain(ctx context.Context, result *backtest.Result) (*Insight, error) {
	if !s.Enabled() {
		return nil, core.ErrLLMDisabled
	}
	if result == nil {
		return nil, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("no result to explain"))
	}

	start := s.now()
	summary, err := llm.Ask(ctx, s.llm, systemPrompt, BuildPrompt(result))
	if err != nil {
		s.logger.Warn("insight generation failed",
			zap.String("provider", s.llm.Name()),
			zap.String("symbol", result.Symbol),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("insight generated",
		zap.String("provider", s.llm.Name()),
		zap.String("symbol", result.Symbol),
		zap.String("strategy", result.Strategy),
		zap.Duration("duration", s.now().Sub(start)),
	)

	return &Insight{
		Provider:    s.llm.Name(),
		Summary:     summary,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// BuildPrompt renders result as the markdown summary sent to the LLM
func BuildPrompt(result *backtest.Result) string {
	var sb strings.Builder
	m := result.Results

	fmt.Fprintf(&sb, "## Backtest: %s with %s\n", result.Symbol, result.Strategy)
	if n := len(result.EquityCurve); n > 0 {
		fmt.Fprintf(&sb, "Period: %s to %s (%d bars)\n",
			result.EquityCurve[0].Date.Format("2006-01-02"),
			result.EquityCurve[n-1].Date.Format("2006-01-02"),
			result.DataPoints)
	}
	if params := formatParams(result.Parameters); params != "" {
		fmt.Fprintf(&sb, "Parameters: %s\n", params)
	}
	sb.WriteString("\n")

	sb.WriteString("## Performance\n")
	fmt.Fprintf(&sb, "- Initial capital: %.2f, final value: %.2f\n", m.InitialCapital, m.FinalValue)
	fmt.Fprintf(&sb, "- Total return: %.2f%% (annualized %.2f%%)\n", m.TotalReturnPercent, m.AnnualizedReturn)
	fmt.Fprintf(&sb, "- Buy-and-hold return: %.2f%%\n", m.BenchmarkReturn)
	fmt.Fprintf(&sb, "- Max drawdown: %.2f (%.2f%%)\n", m.MaxDrawdown, m.MaxDrawdownPercent)
	fmt.Fprintf(&sb, "- Volatility: %.2f%%, Sharpe: %.2f, Calmar: %.2f\n", m.Volatility, m.SharpeRatio, m.CalmarRatio)
	sb.WriteString("\n")

	sb.WriteString("## Trades\n")
	fmt.Fprintf(&sb, "- Closed trades: %d (wins %d, losses %d, win rate %.2f%%)\n",
		m.TotalTrades, m.WinningTrades, m.LosingTrades, m.WinRate)
	fmt.Fprintf(&sb, "- Average win: %.2f, average loss: %.2f, profit factor: %.2f\n",
		m.AverageWin, m.AverageLoss, m.ProfitFactor)

	var sells []backtest.Trade
	for _, t := range result.Trades {
		if t.Type == core.ActionSell {
			sells = append(sells, t)
		}
	}
	if len(sells) > sampleTrades {
		sells = sells[len(sells)-sampleTrades:]
	}
	for _, t := range sells {
		outcome := "LOSS"
		if t.IsWin() {
			outcome = "WIN"
		}
		fmt.Fprintf(&sb, "- %s sell at %.2f: %.2f%% (%s, %s)\n",
			t.Date.Format("2006-01-02"), t.Price, t.ProfitPercent, outcome, t.Signal)
	}

	if len(result.MonthlyPerformance) > 0 {
		sb.WriteString("\n## Monthly\n")
		for _, b := range result.MonthlyPerformance {
			fmt.Fprintf(&sb, "- %04d-%02d: %d trades, return %.2f%%, win rate %.2f%%\n",
				b.Year, b.Month, b.Trades, b.Return, b.WinRate)
		}
	}

	return sb.String()
}

func formatParams(params any) string {
	switch p := params.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return p.String()
	default:
		return fmt.Sprintf("%+v", p)
	}
}
