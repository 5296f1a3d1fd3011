package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/marketdata/crypto"
	"github.com/tradequest/tradequest/internal/metrics"
	"go.uber.org/zap"
)

// DefaultMinBars is the shortest history a source must return to win
const DefaultMinBars = 50

// Chain tries its sources in order and returns the first usable history.
// Crypto symbols go to the crypto sources, everything else to the stock
// sources.
type Chain struct {
	stock   []Source
	crypto  []Source
	minBars int
	logger  *zap.Logger
	metrics *metrics.Registry
}

// ChainOption configures a Chain
type ChainOption func(*Chain)

// WithMinBars sets how many normalized bars a source must return
func WithMinBars(n int) ChainOption {
	return func(c *Chain) {
		if n > 0 {
			c.minBars = n
		}
	}
}

// WithLogger sets the chain logger
func WithLogger(l *zap.Logger) ChainOption {
	return func(c *Chain) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records per-source fetch outcomes in reg
func WithMetrics(reg *metrics.Registry) ChainOption {
	return func(c *Chain) { c.metrics = reg }
}

// NewChain creates a Chain over the given stock and crypto sources
func NewChain(stockSources, cryptoSources []Source, opts ...ChainOption) *Chain {
	c := &Chain{
		stock:   stockSources,
		crypto:  cryptoSources,
		minBars: DefaultMinBars,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Route returns the sources and source-side symbol for symbol
func (c *Chain) Route(symbol string) ([]Source, string, core.AssetClass) {
	if crypto.IsCrypto(symbol) {
		return c.crypto, crypto.NormalizeSymbol(symbol, crypto.DefaultQuote), core.AssetCrypto
	}
	return c.stock, strings.ToUpper(strings.TrimSpace(symbol)), core.AssetStock
}

// FetchHistoricalData returns the first source result with at least minBars
// bars after normalization. When every source fails it returns
// ErrInsufficientData if some source returned a short history, and
// ErrDataUnavailable otherwise.
func (c *Chain) FetchHistoricalData(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error) {
	sources, routed, class := c.Route(symbol)
	if len(sources) == 0 {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("no %s sources configured for %s", class, symbol))
	}

	var (
		lastErr error
		longest int
	)
	for _, src := range sources {
		raw, err := src.FetchHistoricalData(ctx, routed, start, end)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			c.metrics.RecordFetch(src.Name(), "error")
			c.logger.Warn("market data source failed",
				zap.String("source", src.Name()),
				zap.String("symbol", routed),
				zap.Error(err),
			)
			lastErr = core.WrapError(core.ErrSourceFailed, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		bars := Normalize(raw, start, end)
		if len(bars) < c.minBars {
			c.metrics.RecordFetch(src.Name(), "short")
			c.logger.Warn("market data source returned short history",
				zap.String("source", src.Name()),
				zap.String("symbol", routed),
				zap.Int("bars", len(bars)),
				zap.Int("min_bars", c.minBars),
			)
			lastErr = fmt.Errorf("%s: %d bars, need %d", src.Name(), len(bars), c.minBars)
			longest = max(longest, len(bars))
			continue
		}

		c.metrics.RecordFetch(src.Name(), "ok")
		c.logger.Info("market data fetched",
			zap.String("source", src.Name()),
			zap.String("symbol", routed),
			zap.String("asset_class", string(class)),
			zap.Int("bars", len(bars)),
		)
		return bars, nil
	}

	if longest > 0 {
		return nil, core.WrapError(core.ErrInsufficientData, fmt.Errorf("%s: %w", symbol, lastErr))
	}
	if lastErr == nil {
		lastErr = errors.New("no data")
	}
	return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("%s: %w", symbol, lastErr))
}
