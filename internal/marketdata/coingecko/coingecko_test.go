package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradequest/tradequest/internal/marketdata"
)

var _ marketdata.Source = (*CoinGecko)(nil)

func TestCoinGecko_Name(t *testing.T) {
	c := New("")
	if c.Name() != "coingecko" {
		t.Errorf("expected 'coingecko', got '%s'", c.Name())
	}
}

func TestCoinGecko_SymbolToID(t *testing.T) {
	tests := []struct {
		symbol   string
		expected string
	}{
		{"BTCUSDT", "bitcoin"},
		{"ETHUSDT", "ethereum"},
		{"ETHUSD", "ethereum"},
		{"AVAXUSDT", "avalanche-2"},
		{"PEPEUSDT", "pepe"},
	}

	c := New("")
	for _, tc := range tests {
		if got := c.symbolToID(tc.symbol); got != tc.expected {
			t.Errorf("symbolToID(%s) = %s, want %s", tc.symbol, got, tc.expected)
		}
	}
}

func TestCoinGecko_SymbolToVsCurrency(t *testing.T) {
	tests := []struct {
		symbol   string
		expected string
	}{
		{"BTCUSDT", "usd"},
		{"BTCUSD", "usd"},
		{"ETHBTC", "btc"},
		{"LINKETH", "eth"},
	}

	c := New("")
	for _, tc := range tests {
		if got := c.symbolToVsCurrency(tc.symbol); got != tc.expected {
			t.Errorf("symbolToVsCurrency(%s) = %s, want %s", tc.symbol, got, tc.expected)
		}
	}
}

func TestCoinGecko_FetchHistoricalData(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := func(d time.Time) int64 { return d.UnixMilli() }

	var gotPath, gotVs, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotVs = r.URL.Query().Get("vs_currency")
		gotKey = r.Header.Get("x-cg-demo-api-key")
		w.Header().Set("Content-Type", "application/json")
		// two points on the second day: the later one wins
		body := `{"prices":[[` +
			itoa(ms(day)) + `,42000.5],[` +
			itoa(ms(day.AddDate(0, 0, 1))) + `,43000],[` +
			itoa(ms(day.AddDate(0, 0, 1).Add(12*time.Hour))) + `,43500]],` +
			`"total_volumes":[[` + itoa(ms(day)) + `,1200000000],[` + itoa(ms(day.AddDate(0, 0, 1))) + `,900000000]]}`
		w.Write([]byte(body))
	}))
	defer server.Close()

	c := NewWithBaseURL("demo-key", server.URL)
	bars, err := c.FetchHistoricalData(context.Background(), "BTCUSDT", day, day.AddDate(0, 0, 2))
	require.NoError(t, err)

	assert.Equal(t, "/coins/bitcoin/market_chart/range", gotPath)
	assert.Equal(t, "usd", gotVs)
	assert.Equal(t, "demo-key", gotKey)

	require.Len(t, bars, 2)
	assert.Equal(t, day, bars[0].Date)
	assert.Equal(t, 42000.5, bars[0].Close)
	assert.Equal(t, bars[0].Close, bars[0].High)
	assert.Equal(t, int64(1200000000), bars[0].Volume)
	assert.Equal(t, 43500.0, bars[1].Close)
}

func TestCoinGecko_FetchHistoricalData_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewWithBaseURL("", server.URL).FetchHistoricalData(context.Background(), "ETHUSDT", time.Now().AddDate(0, -1, 0), time.Now())
	assert.Error(t, err)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
