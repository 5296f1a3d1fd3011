package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/tradequest/tradequest/internal/core"
	"github.com/tradequest/tradequest/internal/marketdata/crypto"
)

const (
	baseURL = "https://api.coingecko.com/api/v3"
)

// CoinGecko fetches daily crypto history from the market_chart/range API.
// That endpoint reports one price per day, so each bar has
// open = high = low = close.
type CoinGecko struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new CoinGecko source
func New(apiKey string) *CoinGecko {
	return &CoinGecko{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a CoinGecko source with custom base URL (for testing)
func NewWithBaseURL(apiKey, url string) *CoinGecko {
	c := New(apiKey)
	c.baseURL = url
	return c
}

func (c *CoinGecko) Name() string {
	return "coingecko"
}

// symbolToID converts trading pair to CoinGecko coin ID
func (c *CoinGecko) symbolToID(symbol string) string {
	base, _ := crypto.ParseSymbol(symbol)
	return crypto.CoinGeckoID(base)
}

// symbolToVsCurrency extracts the quote currency for CoinGecko API
func (c *CoinGecko) symbolToVsCurrency(symbol string) string {
	_, quote := crypto.ParseSymbol(symbol)
	switch quote {
	case "USDT", "USDC", "BUSD", "USD":
		return "usd"
	case "BTC":
		return "btc"
	case "ETH":
		return "eth"
	default:
		return "usd"
	}
}

// FetchHistoricalData fetches daily prices and volumes for a normalized
// symbol such as BTCUSDT
func (c *CoinGecko) FetchHistoricalData(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error) {
	coinID := c.symbolToID(symbol)

	q := url.Values{}
	q.Set("vs_currency", c.symbolToVsCurrency(symbol))
	q.Set("from", fmt.Sprint(core.Day(start).Unix()))
	q.Set("to", fmt.Sprint(core.Day(end).AddDate(0, 0, 1).Unix()))
	reqURL := fmt.Sprintf("%s/coins/%s/market_chart/range?%s", c.baseURL, url.PathEscape(coinID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	// prices and total_volumes are [[timestamp_ms, value], ...]
	var chart struct {
		Prices       [][]float64 `json:"prices"`
		TotalVolumes [][]float64 `json:"total_volumes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	volumes := make(map[time.Time]float64, len(chart.TotalVolumes))
	for _, v := range chart.TotalVolumes {
		if len(v) >= 2 {
			volumes[core.Day(time.UnixMilli(int64(v[0])))] = v[1]
		}
	}

	// intraday points collapse onto their day, last price wins
	byDay := make(map[time.Time]float64, len(chart.Prices))
	for _, p := range chart.Prices {
		if len(p) < 2 {
			continue
		}
		byDay[core.Day(time.UnixMilli(int64(p[0])))] = p[1]
	}

	data := make([]core.Bar, 0, len(byDay))
	for day, price := range byDay {
		data = append(data, core.Bar{
			Date:     day,
			Open:     price,
			High:     price,
			Low:      price,
			Close:    price,
			AdjClose: price,
			Volume:   int64(volumes[day]),
		})
	}
	sort.Slice(data, func(i, j int) bool { return data[i].Date.Before(data[j].Date) })

	return data, nil
}
