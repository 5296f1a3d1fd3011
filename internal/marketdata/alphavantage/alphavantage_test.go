package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradequest/tradequest/internal/marketdata"
)

var _ marketdata.Source = (*AlphaVantage)(nil)

const dailyJSON = `{
  "Meta Data": {"2. Symbol": "IBM"},
  "Time Series (Daily)": {
    "2024-01-05": {"1. open": "160.00", "2. high": "161.50", "3. low": "159.10", "4. close": "160.86", "5. volume": "4000000"},
    "2024-01-04": {"1. open": "158.00", "2. high": "160.70", "3. low": "157.80", "4. close": "158.98", "5. volume": "3900000"},
    "2024-01-03": {"1. open": "157.00", "2. high": "158.20", "3. low": "156.40", "4. close": "157.46", "5. volume": "bad"},
    "2023-12-29": {"1. open": "162.00", "2. high": "163.00", "3. low": "161.00", "4. close": "162.50", "5. volume": "3000000"}
  }
}`

func TestAlphaVantage_FetchHistoricalData(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"function":   r.URL.Query().Get("function"),
			"symbol":     r.URL.Query().Get("symbol"),
			"outputsize": r.URL.Query().Get("outputsize"),
			"apikey":     r.URL.Query().Get("apikey"),
		}
		w.Write([]byte(dailyJSON))
	}))
	defer server.Close()

	a := NewWithBaseURL("demo", server.URL, 600)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars, err := a.FetchHistoricalData(context.Background(), "IBM", start, start.AddDate(0, 0, 10))
	require.NoError(t, err)

	assert.Equal(t, "TIME_SERIES_DAILY", gotQuery["function"])
	assert.Equal(t, "IBM", gotQuery["symbol"])
	assert.Equal(t, "full", gotQuery["outputsize"])
	assert.Equal(t, "demo", gotQuery["apikey"])

	// 2023-12-29 is out of range and 2024-01-03 has a bad volume
	require.Len(t, bars, 2)
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 158.98, bars[0].Close)
	assert.Equal(t, 158.98, bars[0].AdjClose)
	assert.Equal(t, int64(4000000), bars[1].Volume)
}

func TestAlphaVantage_APIErrors(t *testing.T) {
	bodies := map[string]string{
		"error message": `{"Error Message": "Invalid API call."}`,
		"rate limit":    `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`,
		"information":   `{"Information": "premium endpoint"}`,
		"empty":         `{}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := NewWithBaseURL("demo", server.URL, 600).FetchHistoricalData(context.Background(), "IBM", time.Now().AddDate(-1, 0, 0), time.Now())
			assert.Error(t, err)
		})
	}
}

func TestAlphaVantage_RequiresAPIKey(t *testing.T) {
	_, err := New("", 5).FetchHistoricalData(context.Background(), "IBM", time.Now().AddDate(-1, 0, 0), time.Now())
	assert.Error(t, err)
}

func TestAlphaVantage_RateLimitHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dailyJSON))
	}))
	defer server.Close()

	// one request per minute: the second call cannot get a token in time
	a := NewWithBaseURL("demo", server.URL, 1)
	_, err := a.FetchHistoricalData(context.Background(), "IBM", time.Now().AddDate(-1, 0, 0), time.Now())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = a.FetchHistoricalData(ctx, "IBM", time.Now().AddDate(-1, 0, 0), time.Now())
	assert.Error(t, err)
}
