package nav

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Navigation results used as metric labels.
const (
	resultOK        = "ok"
	resultNoMatch   = "no_match"
	resultUnknown   = "unknown_route"
	resultInvalid   = "invalid"
	resultCancelled = "cancelled"
	resultLoadError = "load_error"
	resultDuplicate = "duplicate"
	resultCached    = "cached"
)

// MetricsConfig configures the navigation metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "fractals").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for view load duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the navigation metrics.
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
		Namespace: "fractals",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for navigation. One Metrics is
// shared by every engine of a process.
type Metrics struct {
	navigations  *prometheus.CounterVec
	viewLoads    *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	activeEngine prometheus.Gauge
}

// NewMetrics registers the navigation collectors.
//
// Metrics collected:
//   - fractals_navigations_total: navigations by route and result
//   - fractals_view_loads_total: view loader invocations by route and result
//   - fractals_view_load_duration_seconds: view loader duration by route
//   - fractals_engines_active: engines that have not been closed
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by route and result",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "result"}),

		viewLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "view_loads_total",
			Help:        "Total number of view loads by route and result",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "result"}),

		loadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "view_load_duration_seconds",
			Help:        "View loader duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		activeEngine: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "engines_active",
			Help:        "Number of navigation engines that have not been closed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// The record methods are nil-safe so engines without metrics skip them.

func (m *Metrics) recordNavigation(route, result string) {
	if m == nil {
		return
	}
	if route == "" {
		route = "none"
	}
	m.navigations.WithLabelValues(route, result).Inc()
}

func (m *Metrics) recordLoad(route, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.viewLoads.WithLabelValues(route, result).Inc()
	if result != resultCached {
		m.loadDuration.WithLabelValues(route).Observe(d.Seconds())
	}
}

func (m *Metrics) engineOpened() {
	if m != nil {
		m.activeEngine.Inc()
	}
}

func (m *Metrics) engineClosed() {
	if m != nil {
		m.activeEngine.Dec()
	}
}
