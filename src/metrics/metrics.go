package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	FetchesTotal    *prometheus.CounterVec // labels: result=ok|unavailable|error
	FetchDur        prometheus.Histogram
	CacheHitsTotal  prometheus.Counter
	CacheMissTotal  prometheus.Counter
	StoreHitsTotal  prometheus.Counter
	ComputeDur      prometheus.Histogram
	RequestsTotal   *prometheus.CounterVec // labels: endpoint
	ExportsTotal    *prometheus.CounterVec // labels: result=ok|error
	CachedSeriesLen prometheus.GaugeFunc
}

// NewMetrics registers and returns all Prometheus metrics. cacheLen reports
// the live entry count of the configured series cache.
func NewMetrics(cacheLen func() float64) *Metrics {
	m := &Metrics{
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_fetches_total",
			Help: "Provider fetches by result",
		}, []string{"result"}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_fetch_duration_seconds",
			Help:    "Provider fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_cache_hits_total",
			Help: "Series cache hits",
		}),
		CacheMissTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_cache_misses_total",
			Help: "Series cache misses",
		}),
		StoreHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_store_hits_total",
			Help: "Requests served from the persistent price store",
		}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_compute_duration_seconds",
			Help:    "Deviation engine compute latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_requests_total",
			Help: "HTTP requests by endpoint",
		}, []string{"endpoint"}),
		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_exports_total",
			Help: "Chart snapshot exports by result",
		}, []string{"result"}),
		CachedSeriesLen: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "dashboard_cached_series",
			Help: "Live entries in the series cache",
		}, cacheLen),
	}

	prometheus.MustRegister(
		m.FetchesTotal,
		m.FetchDur,
		m.CacheHitsTotal,
		m.CacheMissTotal,
		m.StoreHitsTotal,
		m.ComputeDur,
		m.RequestsTotal,
		m.ExportsTotal,
		m.CachedSeriesLen,
	)

	return m
}
