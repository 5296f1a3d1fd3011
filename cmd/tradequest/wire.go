package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/tradequest/tradequest/internal/backtest"
	"github.com/tradequest/tradequest/internal/config"
	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/insight"
	"github.com/tradequest/tradequest/internal/llm/factory"
	"github.com/tradequest/tradequest/internal/marketdata"
	"github.com/tradequest/tradequest/internal/marketdata/alphavantage"
	"github.com/tradequest/tradequest/internal/marketdata/binance"
	"github.com/tradequest/tradequest/internal/marketdata/coingecko"
	"github.com/tradequest/tradequest/internal/marketdata/yahoo"
	"github.com/tradequest/tradequest/internal/metrics"
	"github.com/tradequest/tradequest/internal/storage/archive"
	"go.uber.org/zap"
)

// buildSources instantiates the configured sources in fallback order
func buildSources(md config.MarketDataConfig) (stock, crypto []marketdata.Source) {
	for _, name := range md.Sources.Stock {
		switch name {
		case "yahoo":
			stock = append(stock, yahoo.New())
		case "alphavantage":
			stock = append(stock, alphavantage.New(md.AlphaVantage.APIKey, md.AlphaVantage.RequestsPerMinute))
		}
	}
	for _, name := range md.Sources.Crypto {
		switch name {
		case "binance":
			if md.Binance.BaseURL != "" {
				crypto = append(crypto, binance.NewWithBaseURL(md.Binance.BaseURL))
			} else {
				crypto = append(crypto, binance.New())
			}
		case "coingecko":
			crypto = append(crypto, coingecko.New(md.CoinGecko.APIKey))
		}
	}
	return stock, crypto
}

// buildCache returns nil when caching is disabled
func buildCache(c config.CacheConfig) marketdata.Cache {
	switch c.Type {
	case "memory":
		return marketdata.NewMemoryCache()
	case "redis":
		return marketdata.NewRedisCache(marketdata.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		})
	default:
		return nil
	}
}

// buildProvider assembles the source chain behind the configured cache. The
// returned func releases the cache connection.
func buildProvider(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (marketdata.Provider, func()) {
	stock, crypto := buildSources(cfg.MarketData)
	chain := marketdata.NewChain(stock, crypto,
		marketdata.WithMinBars(cfg.Backtest.MinBars),
		marketdata.WithLogger(log),
		marketdata.WithMetrics(reg),
	)

	cache := buildCache(cfg.MarketData.Cache)
	if cache == nil {
		return chain, func() {}
	}
	closeCache := func() {
		if c, ok := cache.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Warn("closing cache", zap.Error(err))
			}
		}
	}
	return marketdata.NewCachedProvider(chain, cache, cfg.MarketData.Cache.TTL, log, reg), closeCache
}

// buildEngine wires the backtest engine with configured defaults
func buildEngine(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (*backtest.Engine, func()) {
	provider, cleanup := buildProvider(cfg, log, reg)
	engine := backtest.New(provider,
		backtest.WithLogger(log),
		backtest.WithMetrics(reg),
		backtest.WithDefaults(backtest.Defaults{
			InitialCapital: cfg.Backtest.InitialCapital,
			CommissionRate: cfg.Backtest.CommissionRate,
			Slippage:       cfg.Backtest.Slippage,
			MinBars:        cfg.Backtest.MinBars,
		}),
	)
	return engine, cleanup
}

// buildArchive returns nil when archiving is disabled
func buildArchive(c config.ArchiveConfig, log *zap.Logger) (*archive.Results, error) {
	var storage archive.Storage
	switch c.Type {
	case "":
		return nil, nil
	case "localfs":
		local, err := archive.NewLocalFS(c.Path)
		if err != nil {
			return nil, fmt.Errorf("creating local archive: %w", err)
		}
		storage = local
	case "s3":
		s3, err := archive.NewS3(archive.S3Config{
			Bucket:    c.S3.Bucket,
			Endpoint:  c.S3.Endpoint,
			Region:    c.S3.Region,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
			Prefix:    c.S3.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 archive: %w", err)
		}
		storage = s3
	default:
		return nil, fmt.Errorf("unknown archive type %q", c.Type)
	}
	return archive.NewResults(storage, log), nil
}

// buildInsight returns nil when no LLM provider is configured
func buildInsight(c config.LLMConfig, log *zap.Logger) (*insight.Service, error) {
	provider, err := factory.New(c)
	if errors.Is(err, core.ErrLLMDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("creating llm provider: %w", err)
	}
	return insight.New(provider, log), nil
}
