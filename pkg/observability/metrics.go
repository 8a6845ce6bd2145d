// Package observability exposes the Prometheus metrics for the gateway.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// User-data store metrics
	SearchesRecorded prometheus.Counter
	BookmarkOutcomes *prometheus.CounterVec
	SnapshotWrites   *prometheus.CounterVec

	// Upstream metrics
	UpstreamRequests *prometheus.CounterVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

// NewCollector creates a metrics collector with its own registry, so tests
// can construct collectors independently without duplicate registration.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		SearchesRecorded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_recorded_total",
				Help:      "Total number of searches recorded in history",
			},
		),
		BookmarkOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookmark_operations_total",
				Help:      "Total number of bookmark operations by outcome",
			},
			[]string{"outcome"},
		),
		SnapshotWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_writes_total",
				Help:      "Total number of user-data snapshot writes",
			},
			[]string{"status"},
		),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream API requests",
			},
			[]string{"operation", "status"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of upstream response cache hits",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of upstream response cache misses",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.SearchesRecorded,
		c.BookmarkOutcomes,
		c.SnapshotWrites,
		c.UpstreamRequests,
		c.CacheHits,
		c.CacheMisses,
	)

	return c
}

// Handler returns the HTTP handler serving this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
