// Package metrics holds the Prometheus collectors for board activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups every corkboard metric on its own registry.
type Collector struct {
	registry *prometheus.Registry

	ItemsCreated       *prometheus.CounterVec
	ItemsDeleted       prometheus.Counter
	ConnectionsCreated *prometheus.CounterVec
	BoardClears        prometheus.Counter
	FlushDuration      prometheus.Histogram
	FlushErrors        prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func New(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ItemsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Items pinned to the board, by type.",
		}, []string{"type"}),
		ItemsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_deleted_total",
			Help:      "Items removed from the board.",
		}),
		ConnectionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_created_total",
			Help:      "Strings pinned between items, by type.",
		}, []string{"type"}),
		BoardClears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_clears_total",
			Help:      "Confirmed full-board clears.",
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_duration_seconds",
			Help:      "Time spent persisting the board.",
			Buckets:   prometheus.DefBuckets,
		}),
		FlushErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flush_errors_total",
			Help:      "Failed board writes.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	c.registry.MustRegister(
		c.ItemsCreated,
		c.ItemsDeleted,
		c.ConnectionsCreated,
		c.BoardClears,
		c.FlushDuration,
		c.FlushErrors,
		c.HTTPRequests,
		c.HTTPDuration,
	)
	return c
}

// ObserveFlush records one persistence attempt.
func (c *Collector) ObserveFlush(start time.Time, err error) {
	if c == nil {
		return
	}
	c.FlushDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.FlushErrors.Inc()
	}
}

func (c *Collector) ItemCreated(kind string) {
	if c != nil {
		c.ItemsCreated.WithLabelValues(kind).Inc()
	}
}

func (c *Collector) ItemDeleted() {
	if c != nil {
		c.ItemsDeleted.Inc()
	}
}

func (c *Collector) ConnectionCreated(kind string) {
	if c != nil {
		c.ConnectionsCreated.WithLabelValues(kind).Inc()
	}
}

func (c *Collector) BoardCleared() {
	if c != nil {
		c.BoardClears.Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
