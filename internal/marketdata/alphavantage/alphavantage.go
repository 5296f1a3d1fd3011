// Package alphavantage fetches daily stock history from the Alpha Vantage
// TIME_SERIES_DAILY endpoint.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tradequest/tradequest/internal/core"
	"golang.org/x/time/rate"
)

const (
	baseURL = "https://www.alphavantage.co/query"
	// DefaultRequestsPerMinute matches the free tier
	DefaultRequestsPerMinute = 5
)

// AlphaVantage implements the marketdata Source interface
type AlphaVantage struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// New creates a new Alpha Vantage source allowing requestsPerMinute calls.
// Calls beyond the budget wait for a token or for ctx to end.
func New(apiKey string, requestsPerMinute int) *AlphaVantage {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	return &AlphaVantage{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

// NewWithBaseURL creates an Alpha Vantage source with custom base URL (for testing)
func NewWithBaseURL(apiKey, url string, requestsPerMinute int) *AlphaVantage {
	a := New(apiKey, requestsPerMinute)
	a.baseURL = url
	return a
}

func (a *AlphaVantage) Name() string {
	return "alphavantage"
}

// FetchHistoricalData fetches the full daily series and keeps [start, end]
func (a *AlphaVantage) FetchHistoricalData(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error) {
	if a.apiKey == "" {
		return nil, errors.New("alpha vantage api key not configured")
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("apikey", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch {
	case result.ErrorMessage != "":
		return nil, fmt.Errorf("alpha vantage error: %s", result.ErrorMessage)
	case result.Note != "":
		return nil, fmt.Errorf("alpha vantage rate limited: %s", result.Note)
	case result.Information != "":
		return nil, fmt.Errorf("alpha vantage: %s", result.Information)
	case len(result.TimeSeries) == 0:
		return nil, fmt.Errorf("no data for symbol: %s", symbol)
	}

	from, to := core.Day(start), core.Day(end)
	data := make([]core.Bar, 0, len(result.TimeSeries))
	for day, entry := range result.TimeSeries {
		date, err := time.Parse(time.DateOnly, day)
		if err != nil || date.Before(from) || date.After(to) {
			continue
		}
		bar, err := entry.toBar(date)
		if err != nil {
			continue
		}
		data = append(data, bar)
	}

	return data, nil
}

type dailyResponse struct {
	ErrorMessage string                `json:"Error Message"`
	Note         string                `json:"Note"`
	Information  string                `json:"Information"`
	TimeSeries   map[string]dailyEntry `json:"Time Series (Daily)"`
}

type dailyEntry struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

func (e dailyEntry) toBar(date time.Time) (core.Bar, error) {
	var prices [4]float64
	for i, s := range []string{e.Open, e.High, e.Low, e.Close} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return core.Bar{}, err
		}
		prices[i] = v
	}
	volume, err := strconv.ParseInt(e.Volume, 10, 64)
	if err != nil {
		return core.Bar{}, err
	}

	return core.Bar{
		Date:     date,
		Open:     prices[0],
		High:     prices[1],
		Low:      prices[2],
		Close:    prices[3],
		AdjClose: prices[3],
		Volume:   volume,
	}, nil
}
