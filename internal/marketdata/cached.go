package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/metrics"
	"go.uber.org/zap"
)

// CachedProvider serves histories from a Cache and fills it from the
// wrapped Provider on a miss. Cache failures degrade to a direct fetch.
type CachedProvider struct {
	next    Provider
	cache   Cache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewCachedProvider wraps next with cache
func NewCachedProvider(next Provider, cache Cache, ttl time.Duration, logger *zap.Logger, reg *metrics.Registry) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		metrics: reg,
	}
}

func (p *CachedProvider) FetchHistoricalData(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error) {
	key := CacheKey(symbol, start, end)

	bars, err := p.cache.Get(ctx, key)
	switch {
	case err == nil:
		p.metrics.RecordCacheLookup("hit")
		return bars, nil
	case errors.Is(err, core.ErrCacheMiss):
		p.metrics.RecordCacheLookup("miss")
	default:
		p.metrics.RecordCacheLookup("error")
		p.logger.Warn("market data cache read failed", zap.String("key", key), zap.Error(err))
	}

	bars, err = p.next.FetchHistoricalData(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, bars, p.ttl); err != nil {
		p.logger.Warn("market data cache write failed", zap.String("key", key), zap.Error(err))
	}
	return bars, nil
}
