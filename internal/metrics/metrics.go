// Package metrics exposes the Prometheus instruments of the service and the
// HTTP middleware that feeds them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "tradequest"

// Registry owns a private Prometheus registry and the service instruments.
//
// Every method is safe on a nil *Registry, so components can take an
// optional registry without guarding each call site.
type Registry struct {
	*prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	backtests        *prometheus.CounterVec
	backtestDuration *prometheus.HistogramVec
	fetches          *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	jobs             *prometheus.GaugeVec
}

// NewRegistry creates a registry with runtime collectors and all service
// instruments registered.
func NewRegistry() *Registry {
	r := &Registry{
		Registry: prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status class.",
		}, []string{"method", "path", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),

		backtests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backtests_total",
			Help:      "Backtest runs by strategy and outcome.",
		}, []string{"strategy", "status"}),
		backtestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backtest_duration_seconds",
			Help:      "Backtest wall time including the data fetch.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"strategy"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "fetch_total",
			Help:      "Market data source attempts by source and outcome.",
		}, []string{"source", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "cache_total",
			Help:      "Market data cache lookups by result.",
		}, []string{"result"}),
		jobs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs",
			Help:      "Backtest jobs held in the store by status.",
		}, []string{"status"}),
	}

	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpLatency,
		r.httpInFlight,
		r.backtests,
		r.backtestDuration,
		r.fetches,
		r.cacheLookups,
		r.jobs,
	)
	return r
}

// RecordRequest counts one served HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, path, statusClass(status)).Inc()
	r.httpLatency.WithLabelValues(method, path).Observe(duration)
}

func (r *Registry) InFlightInc() {
	if r == nil {
		return
	}
	r.httpInFlight.Inc()
}

func (r *Registry) InFlightDec() {
	if r == nil {
		return
	}
	r.httpInFlight.Dec()
}

// RecordBacktest records a finished backtest run.
func (r *Registry) RecordBacktest(strategy, status string, duration float64) {
	if r == nil {
		return
	}
	r.backtests.WithLabelValues(strategy, status).Inc()
	r.backtestDuration.WithLabelValues(strategy).Observe(duration)
}

// RecordFetch records one market data source attempt.
func (r *Registry) RecordFetch(source, status string) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(source, status).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (r *Registry) RecordCacheLookup(result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// SetJobs sets the number of jobs currently in a status.
func (r *Registry) SetJobs(status string, count int) {
	if r == nil {
		return
	}
	r.jobs.WithLabelValues(status).Set(float64(count))
}

// statusClass buckets a status code as 2xx, 4xx, ...
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return string(rune('0'+status/100)) + "xx"
}
