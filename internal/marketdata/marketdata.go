// Package marketdata fetches daily bars for stocks and crypto assets from an
// ordered list of upstream sources.
package marketdata

import (
	"context"
	"time"

	"github.com/tradequest/tradequest/internal/core"
)

// Provider supplies daily bars sorted ascending by date
type Provider interface {
	FetchHistoricalData(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error)
}

// Source is one upstream API. Sources return raw bars; the Chain normalizes
// them.
type Source interface {
	Name() string
	FetchHistoricalData(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error)
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error)

// FetchHistoricalData calls f
func (f ProviderFunc) FetchHistoricalData(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error) {
	return f(ctx, symbol, start, end)
}
