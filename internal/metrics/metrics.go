// Package metrics exposes prometheus instrumentation for the caching
// proxy.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "farmproxy",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the proxy",
		},
		[]string{"method", "code"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "farmproxy",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests handled by the proxy",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "farmproxy",
			Name:      "cache_hits_total",
			Help:      "Total cache hits",
		},
	)

	cacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "farmproxy",
			Name:      "cache_misses_total",
			Help:      "Total cache misses",
		},
	)

	cacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "farmproxy",
			Name:      "cache_evictions_total",
			Help:      "Entries evicted because the cache was full",
		},
	)

	cacheInvalidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "farmproxy",
			Name:      "cache_invalidated_entries_total",
			Help:      "Entries removed by pattern invalidation",
		},
	)
)

func Init() {
	prometheus.MustRegister(requestTotal, requestDuration, cacheHits, cacheMisses, cacheEvictions, cacheInvalidations)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveRequest(method, code string, d time.Duration) {
	requestTotal.WithLabelValues(method, code).Inc()
	requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// Collector adapts the prometheus counters to the cache store's
// metrics hook.
type Collector struct{}

func (Collector) Hit()      { cacheHits.Inc() }
func (Collector) Miss()     { cacheMisses.Inc() }
func (Collector) Eviction() { cacheEvictions.Inc() }
func (Collector) Invalidation(removed int) {
	cacheInvalidations.Add(float64(removed))
}
