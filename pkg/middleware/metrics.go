// Package middleware provides instrumentation wrappers around the render
// pipelines: Prometheus metrics and OpenTelemetry tracing. Both wrap the
// render.Renderer interface so either pipeline can be instrumented
// without knowing which one it is.
package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/velo-dev/velo/pkg/render"
)

// MetricsConfig configures the Prometheus render metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "velo").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// RendererName labels the wrapped pipeline ("html", "markdown").
	RendererName string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithRendererName sets the renderer label value.
func WithRendererName(name string) MetricsOption {
	return func(c *MetricsConfig) {
		c.RendererName = name
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
		Namespace:    "velo",
		RendererName: "html",
		Buckets:      prometheus.DefBuckets,
		Registry:     prometheus.DefaultRegisterer,
	}
}

// renderMetrics holds the Prometheus collectors.
type renderMetrics struct {
	rendersTotal   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
}

func newRenderMetrics(cfg MetricsConfig) *renderMetrics {
	factory := promauto.With(cfg.Registry)
	return &renderMetrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "renders_total",
			Help:        "Total render passes by renderer and status class.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"renderer", "status_class"}),
		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render pass duration in seconds.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"renderer"}),
	}
}

// metricsRenderer wraps a Renderer with Prometheus instrumentation.
type metricsRenderer struct {
	next    render.Renderer
	name    string
	metrics *renderMetrics
}

// Metrics wraps a renderer so every render pass is counted and timed.
func Metrics(next render.Renderer, opts ...MetricsOption) render.Renderer {
	cfg := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &metricsRenderer{
		next:    next,
		name:    cfg.RendererName,
		metrics: newRenderMetrics(cfg),
	}
}

// Render implements render.Renderer.
func (m *metricsRenderer) Render(ctx context.Context, rawURL string) render.Result {
	start := time.Now()
	res := m.next.Render(ctx, rawURL)

	m.metrics.renderDuration.WithLabelValues(m.name).Observe(time.Since(start).Seconds())
	m.metrics.rendersTotal.WithLabelValues(m.name, statusClass(res.Status)).Inc()
	return res
}

// statusClass buckets a status code into its class label ("2xx", "3xx",
// "4xx", "5xx").
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return fmt.Sprintf("%dxx", status/100)
}
