package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/tradequest/tradequest/internal/core"
	"golang.org/x/time/rate"
)

// maxKlines is the largest page the klines endpoint returns
const maxKlines = 1000

// Binance fetches daily spot klines from Binance
type Binance struct {
	client  *gobinance.Client
	limiter *rate.Limiter
}

// New creates a new Binance source. Klines are public, so no API key is
// needed.
func New() *Binance {
	client := gobinance.NewClient("", "")
	client.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	return &Binance{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// NewWithBaseURL creates a Binance source with custom base URL (for testing)
func NewWithBaseURL(url string) *Binance {
	b := New()
	b.client.BaseURL = url
	return b
}

func (b *Binance) Name() string {
	return "binance"
}

// FetchHistoricalData pages through daily klines for a normalized symbol such
// as BTCUSDT
func (b *Binance) FetchHistoricalData(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error) {
	from := core.Day(start).UnixMilli()
	to := core.Day(end).AddDate(0, 0, 1).UnixMilli() - 1

	var data []core.Bar
	for from <= to {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		klines, err := b.client.NewKlinesService().
			Symbol(symbol).
			Interval("1d").
			StartTime(from).
			EndTime(to).
			Limit(maxKlines).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching klines: %w", err)
		}

		for _, k := range klines {
			bar, err := toBar(k)
			if err != nil {
				continue
			}
			data = append(data, bar)
		}

		if len(klines) < maxKlines {
			break
		}
		from = klines[len(klines)-1].OpenTime + 1
	}

	return data, nil
}

func toBar(k *gobinance.Kline) (core.Bar, error) {
	var prices [4]float64
	for i, s := range []string{k.Open, k.High, k.Low, k.Close} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return core.Bar{}, err
		}
		prices[i] = v
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return core.Bar{}, err
	}

	return core.Bar{
		Date:     time.UnixMilli(k.OpenTime).UTC(),
		Open:     prices[0],
		High:     prices[1],
		Low:      prices[2],
		Close:    prices[3],
		AdjClose: prices[3],
		Volume:   int64(volume),
	}, nil
}
