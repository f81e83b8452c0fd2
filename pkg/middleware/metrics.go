package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dwerrors "github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/widget"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "docwidget").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for action duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
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
		Namespace: "docwidget",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the widget's Prometheus collectors. Create one per registry;
// registering twice on the same registry panics.
type Metrics struct {
	actionsTotal   *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	actionErrors   *prometheus.CounterVec
	activeSessions prometheus.Gauge
	selectionBytes prometheus.Histogram
}

// NewMetrics registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "actions_total",
			Help:        "Total number of widget actions dispatched",
			ConstLabels: config.ConstLabels,
		}, []string{"action", "status"}),

		actionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "action_duration_seconds",
			Help:        "Action handling duration in seconds, including endpoint calls",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"action"}),

		actionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "action_errors_total",
			Help:        "Total number of failed actions by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"action", "code"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of live widget sessions",
			ConstLabels: config.ConstLabels,
		}),

		selectionBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "selection_bytes",
			Help:        "Size of files staged by the selection handler",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{10240, 102400, 524288, 1048576, 2097152, 5242880, 10485760},
		}),
	}
}

// Prometheus is shorthand for NewMetrics(opts...).Middleware().
func Prometheus(opts ...MetricsOption) widget.Middleware {
	return NewMetrics(opts...).Middleware()
}

// Middleware returns the action middleware recording into m.
func (m *Metrics) Middleware() widget.Middleware {
	return widget.MiddlewareFunc(func(ctx *widget.Context, next func() error) error {
		action := string(ctx.Action())

		start := time.Now()
		err := next()
		m.actionDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())

		status := "success"
		if err != nil {
			status = "error"
			m.actionErrors.WithLabelValues(action, errorCode(err)).Inc()
		}
		m.actionsTotal.WithLabelValues(action, status).Inc()

		return err
	})
}

// RecordSessionCreate records a new session.
func (m *Metrics) RecordSessionCreate() {
	m.activeSessions.Inc()
}

// RecordSessionDestroy records a session ending.
func (m *Metrics) RecordSessionDestroy() {
	m.activeSessions.Dec()
}

// RecordSelection records the size of a staged file.
func (m *Metrics) RecordSelection(bytes int64) {
	m.selectionBytes.Observe(float64(bytes))
}

// errorCode keeps the label bounded: registry codes or "internal".
func errorCode(err error) string {
	if code := dwerrors.Code(err); code != "" {
		return code
	}
	return "internal"
}
