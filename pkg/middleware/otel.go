package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/velo-dev/velo/pkg/render"
)

// Default tracer name for Velo applications.
const defaultTracerName = "velo"

// OTelConfig configures the OpenTelemetry render middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "velo").
	TracerName string

	// RendererName labels spans with the wrapped pipeline.
	RendererName string

	// AttributeExtractor extracts custom attributes per render.
	// Called with the request URL before the render runs.
	AttributeExtractor func(rawURL string) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithOTelRendererName sets the renderer attribute value.
func WithOTelRendererName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.RendererName = name
	}
}

// WithAttributeExtractor sets the custom attribute extractor.
func WithAttributeExtractor(fn func(rawURL string) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = fn
	}
}

// otelRenderer wraps a Renderer with a span per render pass.
type otelRenderer struct {
	next render.Renderer
	cfg  OTelConfig
}

// Trace wraps a renderer so every render pass runs inside a span carrying
// the URL, renderer name and resulting status.
func Trace(next render.Renderer, opts ...OTelOption) render.Renderer {
	cfg := OTelConfig{
		TracerName:   defaultTracerName,
		RendererName: "html",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.tracer = otel.Tracer(cfg.TracerName)
	return &otelRenderer{next: next, cfg: cfg}
}

// Render implements render.Renderer.
func (o *otelRenderer) Render(ctx context.Context, rawURL string) render.Result {
	attrs := []attribute.KeyValue{
		attribute.String("velo.renderer", o.cfg.RendererName),
		attribute.String("velo.url", rawURL),
	}
	if o.cfg.AttributeExtractor != nil {
		attrs = append(attrs, o.cfg.AttributeExtractor(rawURL)...)
	}

	ctx, span := o.cfg.tracer.Start(ctx, "velo.render",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	res := o.next.Render(ctx, rawURL)

	span.SetAttributes(attribute.Int("velo.status", res.Status))
	if res.Status >= 500 {
		span.SetStatus(codes.Error, fmt.Sprintf("render returned %d", res.Status))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return res
}
