package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/davidsavoie1/params-router/pkg/history"
	"github.com/davidsavoie1/params-router/pkg/location"
)

// Default tracer name for navigation spans.
const defaultTracerName = "params-router"

// OTelConfig configures the OpenTelemetry navigation middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "params-router").
	TracerName string

	// IncludeURL includes the destination URL in spans. URLs can
	// carry identifiers, so deployments handling sensitive paths may
	// disable it. Enabled by default.
	IncludeURL bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry navigation middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeURL enables or disables recording destination URLs.
func WithIncludeURL(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeURL = include
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
		IncludeURL: true,
	}
}

// OpenTelemetry creates middleware that records a span around every
// navigation commit, covering the synchronous subscriber dispatch.
// The tracer comes from the global OpenTelemetry tracer provider;
// configure it in main() before wiring the history.
func OpenTelemetry(opts ...OTelOption) history.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return func(next history.History) history.History {
		return &tracingHistory{next: next, config: config}
	}
}

type tracingHistory struct {
	next   history.History
	config OTelConfig
}

func (h *tracingHistory) Location() location.Location {
	return h.next.Location()
}

func (h *tracingHistory) Push(url string) {
	h.traced("history.push", url, func() { h.next.Push(url) })
}

func (h *tracingHistory) Replace(url string) {
	h.traced("history.replace", url, func() { h.next.Replace(url) })
}

func (h *tracingHistory) Subscribe(fn func(location.Location)) history.UnsubscribeFunc {
	return h.next.Subscribe(fn)
}

func (h *tracingHistory) traced(name, url string, commit func()) {
	attrs := []attribute.KeyValue{
		attribute.String("paramsrouter.op", name),
	}
	if h.config.IncludeURL {
		attrs = append(attrs, attribute.String("paramsrouter.url", url))
	}

	_, span := h.config.tracer.Start(
		context.Background(),
		name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	commit()
}
