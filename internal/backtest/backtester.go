package backtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/indicator"
	"github.com/tradequest/tradequest/internal/metrics"
	"github.com/tradequest/tradequest/internal/strategy"
	"go.uber.org/zap"
)

// Provider supplies daily bars sorted ascending by date
type Provider interface {
	FetchHistoricalData(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error)
}

// Defaults fill in Options fields the caller left unset
type Defaults struct {
	InitialCapital float64
	CommissionRate float64
	Slippage       float64
	MinBars        int
}

// Engine runs strategy backtests against historical data
type Engine struct {
	provider Provider
	logger   *zap.Logger
	metrics  *metrics.Registry
	defaults Defaults
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records run counts and durations in reg
func WithMetrics(reg *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = reg }
}

// WithDefaults replaces the default costs and overrides the default capital
// and minimum history. Costs are taken as given, so zero means cost-free;
// zero capital or minimum history keeps the built-in value.
func WithDefaults(d Defaults) Option {
	return func(e *Engine) {
		if d.InitialCapital > 0 {
			e.defaults.InitialCapital = d.InitialCapital
		}
		e.defaults.CommissionRate = d.CommissionRate
		e.defaults.Slippage = d.Slippage
		if d.MinBars > 0 {
			e.defaults.MinBars = d.MinBars
		}
	}
}

// New creates a new Engine fetching bars from provider
func New(provider Provider, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		logger:   zap.NewNop(),
		defaults: Defaults{
			InitialCapital: DefaultInitialCapital,
			CommissionRate: DefaultCommissionRate,
			Slippage:       DefaultSlippage,
			MinBars:        MinBars,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// plan is a validated run request with costs resolved
type plan struct {
	opts       Options
	kind       strategy.Kind
	params     strategy.Params
	commission float64
	slippage   float64
}

// Run executes a backtest. Input is validated before any data is fetched,
// and a failed run returns no partial result.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	result, err := e.run(ctx, opts, start)

	label := "unknown"
	if kind, kerr := strategy.ParseKind(opts.Strategy); kerr == nil {
		label = string(kind)
	}
	status := "completed"
	if err != nil {
		status = "failed"
	}
	e.metrics.RecordBacktest(label, status, time.Since(start).Seconds())

	return result, err
}

func (e *Engine) run(ctx context.Context, opts Options, start time.Time) (*Result, error) {
	p, err := e.prepare(opts)
	if err != nil {
		return nil, err
	}

	bars, err := e.fetch(ctx, p.opts)
	if err != nil {
		return nil, err
	}

	return e.execute(p, bars, start)
}

// Validate checks opts the same way Run does, without fetching data
func (e *Engine) Validate(opts Options) error {
	_, err := e.prepare(opts)
	return err
}

func (e *Engine) prepare(opts Options) (plan, error) {
	kind, err := strategy.ParseKind(opts.Strategy)
	if err != nil {
		return plan{}, err
	}
	params, err := strategy.Resolve(kind, opts.Parameters)
	if err != nil {
		return plan{}, err
	}

	opts.Symbol = strings.TrimSpace(opts.Symbol)
	opts.Strategy = string(kind)
	if opts.InitialCapital == 0 {
		opts.InitialCapital = e.defaults.InitialCapital
	}
	commission, slippage := e.defaults.CommissionRate, e.defaults.Slippage
	if opts.CommissionRate != nil {
		commission = *opts.CommissionRate
	}
	if opts.Slippage != nil {
		slippage = *opts.Slippage
	}

	switch {
	case opts.Symbol == "":
		err = errors.New("symbol is required")
	case opts.StartDate.IsZero() || opts.EndDate.IsZero():
		err = errors.New("start and end dates are required")
	case !opts.StartDate.Before(opts.EndDate):
		err = fmt.Errorf("start date %s is not before end date %s",
			opts.StartDate.Format(time.DateOnly), opts.EndDate.Format(time.DateOnly))
	case opts.InitialCapital <= 0:
		err = fmt.Errorf("initial capital must be positive, got %v", opts.InitialCapital)
	case commission < 0 || commission >= 1:
		err = fmt.Errorf("commission rate %v out of range [0, 1)", commission)
	case slippage < 0 || slippage >= 1:
		err = fmt.Errorf("slippage %v out of range [0, 1)", slippage)
	}
	if err != nil {
		return plan{}, core.WrapError(core.ErrInvalidRequest, err)
	}

	return plan{opts: opts, kind: kind, params: params, commission: commission, slippage: slippage}, nil
}

func (e *Engine) fetch(ctx context.Context, opts Options) ([]core.Bar, error) {
	if e.provider == nil {
		return nil, core.WrapError(core.ErrDataUnavailable, errors.New("no market data provider configured"))
	}

	bars, err := e.provider.FetchHistoricalData(ctx, opts.Symbol, opts.StartDate, opts.EndDate)
	if err != nil {
		var coded *core.Error
		if errors.As(err, &coded) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, core.WrapError(core.ErrDataUnavailable, err)
	}
	return bars, nil
}

func (e *Engine) execute(p plan, bars []core.Bar, start time.Time) (*Result, error) {
	if len(bars) < e.defaults.MinBars {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("%s: got %d bars, need %d", p.opts.Symbol, len(bars), e.defaults.MinBars))
	}

	ind := indicator.Compute(bars, p.params.IndicatorConfig(p.kind))
	signals, err := strategy.Generate(p.kind, bars, ind, p.params)
	if err != nil {
		return nil, err
	}

	trades, curve := simulate(bars, signals, p.opts.InitialCapital, p.commission, p.slippage)
	for _, t := range trades {
		e.logger.Debug("trade",
			zap.String("symbol", p.opts.Symbol),
			zap.Time("date", t.Date),
			zap.String("type", string(t.Type)),
			zap.Float64("price", t.Price),
			zap.Int64("shares", t.Shares),
			zap.String("signal", t.Signal),
		)
	}

	result := &Result{
		Symbol:             p.opts.Symbol,
		Strategy:           string(p.kind),
		Parameters:         p.params,
		Results:            Analyze(trades, curve, p.opts.InitialCapital, bars),
		Trades:             trades,
		EquityCurve:        curve,
		MonthlyPerformance: Monthly(trades),
		DataPoints:         len(bars),
	}
	if result.Trades == nil {
		result.Trades = []Trade{}
	}

	e.logger.Info("backtest completed",
		zap.String("symbol", result.Symbol),
		zap.String("strategy", result.Strategy),
		zap.Int("bars", len(bars)),
		zap.Int("trades", len(trades)),
		zap.Float64("return_pct", result.Results.TotalReturnPercent),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}
