// Package middleware provides observability wrappers for a
// history.History: Prometheus metrics and OpenTelemetry tracing
// around navigation commits.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/davidsavoie1/params-router/pkg/history"
	"github.com/davidsavoie1/params-router/pkg/location"
)

// MetricsConfig configures the Prometheus navigation middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "paramsrouter").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus navigation middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "paramsrouter",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus collectors for navigation dispatch.
type metrics struct {
	navigationsTotal *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of committed navigations by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_dispatch_duration_seconds",
			Help:        "Synchronous subscriber dispatch duration per navigation",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"op"}),
	}
}

// Prometheus creates middleware that counts navigations and times
// their synchronous subscriber dispatch.
//
// Metrics collected:
//   - paramsrouter_navigations_total: counter by op (push, replace)
//   - paramsrouter_navigation_dispatch_duration_seconds: histogram by op
//
// Example:
//
//	hist := history.Wrap(history.NewMemory("/"),
//	    middleware.Prometheus(middleware.WithNamespace("myapp")),
//	)
func Prometheus(opts ...MetricsOption) history.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	m := initMetrics(config)

	return func(next history.History) history.History {
		return &metricsHistory{next: next, m: m}
	}
}

type metricsHistory struct {
	next history.History
	m    *metrics
}

func (h *metricsHistory) Location() location.Location {
	return h.next.Location()
}

func (h *metricsHistory) Push(url string) {
	h.observe("push", func() { h.next.Push(url) })
}

func (h *metricsHistory) Replace(url string) {
	h.observe("replace", func() { h.next.Replace(url) })
}

func (h *metricsHistory) Subscribe(fn func(location.Location)) history.UnsubscribeFunc {
	return h.next.Subscribe(fn)
}

func (h *metricsHistory) observe(op string, commit func()) {
	start := time.Now()
	commit()
	h.m.dispatchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	h.m.navigationsTotal.WithLabelValues(op).Inc()
}
