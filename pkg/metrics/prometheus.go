package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	remoteFetches *prometheus.CounterVec
	rowsPersisted *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_hits_total",
				Help: "Total number of cache hits per namespace",
			},
			[]string{"namespace"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_misses_total",
				Help: "Total number of cache misses per namespace",
			},
			[]string{"namespace"},
		),
		remoteFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_remote_fetches_total",
				Help: "Total number of remote provider fetches",
			},
			[]string{"ticker"},
		),
		rowsPersisted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_rows_persisted_total",
				Help: "Total number of rows written to the durable store",
			},
			[]string{"period"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCacheHit records a cache hit for a namespace.
func (r *Recorder) RecordCacheHit(namespace string) {
	r.cacheHits.WithLabelValues(namespace).Inc()
}

// RecordCacheMiss records a cache miss for a namespace.
func (r *Recorder) RecordCacheMiss(namespace string) {
	r.cacheMisses.WithLabelValues(namespace).Inc()
}

// RecordRemoteFetch records one remote provider call for a ticker.
func (r *Recorder) RecordRemoteFetch(ticker string) {
	r.remoteFetches.WithLabelValues(ticker).Inc()
}

// RecordRowsPersisted records rows committed to the durable store.
func (r *Recorder) RecordRowsPersisted(period string, n int) {
	r.rowsPersisted.WithLabelValues(period).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
