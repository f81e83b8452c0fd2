package middleware

import (
	"context"

	"github.com/vango-dev/docwidget/pkg/widget"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "docwidget"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "docwidget").
	TracerName string

	// IncludeTarget records the event target id. Enabled by default.
	IncludeTarget bool

	// Filter determines which actions to trace.
	// If nil, all actions are traced.
	Filter func(ctx *widget.Context) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(ctx *widget.Context) []attribute.KeyValue

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

// WithIncludeTarget enables/disables recording the target id.
func WithIncludeTarget(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeTarget = include
	}
}

// WithActionFilter sets a filter function for actions.
func WithActionFilter(filter func(ctx *widget.Context) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx *widget.Context) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:    defaultTracerName,
		IncludeTarget: true,
	}
}

// OpenTelemetry creates middleware that traces every widget action.
//
// The tracer comes from the global provider; set one with
// otel.SetTracerProvider before building the controller.
func OpenTelemetry(opts ...OTelOption) widget.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return widget.MiddlewareFunc(func(ctx *widget.Context, next func() error) error {
		if config.Filter != nil && !config.Filter(ctx) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("docwidget.action", string(ctx.Action())),
			attribute.String("docwidget.event_type", ctx.Event().Type),
		}
		if config.IncludeTarget && ctx.Event().Target != "" {
			attrs = append(attrs, attribute.String("docwidget.target", ctx.Event().Target))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ctx)...)
		}

		spanCtx, span := config.tracer.Start(
			ctx.StdContext(),
			"docwidget."+string(ctx.Action()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		ctx.SetStdContext(spanCtx)

		err := next()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

// SpanFromContext returns the span of the action being handled. Without the
// OpenTelemetry middleware it is a no-op span.
func SpanFromContext(ctx *widget.Context) trace.Span {
	return trace.SpanFromContext(ctx.StdContext())
}

// TraceContext returns the context to use for outbound calls, carrying the
// action span when there is one.
func TraceContext(ctx *widget.Context) context.Context {
	return ctx.StdContext()
}
