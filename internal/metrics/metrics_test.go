package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findMetric returns the series of family name whose labels include want
func findMetric(t *testing.T, reg *Registry, name string, want map[string]string) *dto.Metric {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, label := range m.GetLabel() {
				if v, ok := want[label.GetName()]; ok && v == label.GetValue() {
					matched++
				}
			}
			if matched == len(want) {
				return m
			}
		}
	}
	return nil
}

func counterValue(t *testing.T, reg *Registry, name string, labels map[string]string) float64 {
	t.Helper()
	m := findMetric(t, reg, name, labels)
	switch {
	case m == nil:
		return 0
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	default:
		return m.GetGauge().GetValue()
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NotNil(t, reg)

	var _ prometheus.Gatherer = reg
	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs, "runtime collectors should be registered")
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{202, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{422, "4xx"},
		{502, "5xx"},
		{0, "unknown"},
		{999, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.status), "status %d", tt.status)
	}
}

func TestRegistry_RecordRequest(t *testing.T) {
	reg := NewRegistry()

	reg.RecordRequest("POST", "POST /api/v1/backtests", 202, 0.123)
	reg.RecordRequest("POST", "POST /api/v1/backtests", 400, 0.01)

	assert.Equal(t, 1.0, counterValue(t, reg, "tradequest_http_requests_total",
		map[string]string{"method": "POST", "path": "POST /api/v1/backtests", "status": "2xx"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "tradequest_http_requests_total",
		map[string]string{"status": "4xx"}))

	hist := findMetric(t, reg, "tradequest_http_request_duration_seconds", map[string]string{"method": "POST"})
	require.NotNil(t, hist)
	assert.Equal(t, uint64(2), hist.GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.133, hist.GetHistogram().GetSampleSum(), 1e-9)
}

func TestRegistry_InFlight(t *testing.T) {
	reg := NewRegistry()

	reg.InFlightInc()
	reg.InFlightInc()
	reg.InFlightDec()

	assert.Equal(t, 1.0, counterValue(t, reg, "tradequest_http_requests_in_flight", nil))
}

func TestRegistry_BusinessMetrics(t *testing.T) {
	reg := NewRegistry()

	reg.RecordBacktest("ma_crossover", "completed", 0.4)
	reg.RecordBacktest("ma_crossover", "completed", 0.2)
	reg.RecordBacktest("breakout", "failed", 0.1)
	reg.RecordFetch("yahoo", "error")
	reg.RecordFetch("alphavantage", "ok")
	reg.RecordCacheLookup("hit")
	reg.SetJobs("running", 3)

	assert.Equal(t, 2.0, counterValue(t, reg, "tradequest_backtests_total",
		map[string]string{"strategy": "ma_crossover", "status": "completed"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "tradequest_backtests_total",
		map[string]string{"strategy": "breakout", "status": "failed"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "tradequest_marketdata_fetch_total",
		map[string]string{"source": "yahoo", "status": "error"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "tradequest_marketdata_cache_total",
		map[string]string{"result": "hit"}))
	assert.Equal(t, 3.0, counterValue(t, reg, "tradequest_jobs",
		map[string]string{"status": "running"}))

	hist := findMetric(t, reg, "tradequest_backtest_duration_seconds", map[string]string{"strategy": "ma_crossover"})
	require.NotNil(t, hist)
	assert.Equal(t, uint64(2), hist.GetHistogram().GetSampleCount())
}

func TestRegistry_NilSafe(t *testing.T) {
	var reg *Registry

	assert.NotPanics(t, func() {
		reg.RecordRequest("GET", "/", 200, 0.1)
		reg.InFlightInc()
		reg.InFlightDec()
		reg.RecordBacktest("ma_crossover", "completed", 1)
		reg.RecordFetch("yahoo", "ok")
		reg.RecordCacheLookup("miss")
		reg.SetJobs("pending", 1)
	})
}
