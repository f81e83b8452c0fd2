package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/vango-dev/docwidget/pkg/widget"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordedSpan struct {
	noop.Span
	name   string
	attrs  []attribute.KeyValue
	errs   []error
	status codes.Code
	ended  bool
}

func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) { s.errs = append(s.errs, err) }
func (s *recordedSpan) SetStatus(code codes.Code, _ string)           { s.status = code }
func (s *recordedSpan) End(...trace.SpanEndOption)                    { s.ended = true }

type recordingTracer struct {
	embedded.Tracer
	spans []*recordedSpan
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &recordedSpan{name: name, attrs: cfg.Attributes()}
	r.spans = append(r.spans, span)
	return trace.ContextWithSpan(ctx, span), span
}

type recordingProvider struct {
	embedded.TracerProvider
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer { return p.tracer }

func installRecorder(t *testing.T) *recordingTracer {
	t.Helper()
	prev := otel.GetTracerProvider()
	tracer := &recordingTracer{}
	otel.SetTracerProvider(&recordingProvider{tracer: tracer})
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return tracer
}

func hasAttr(attrs []attribute.KeyValue, key, value string) bool {
	for _, kv := range attrs {
		if string(kv.Key) == key && kv.Value.AsString() == value {
			return true
		}
	}
	return false
}

func TestOpenTelemetry_SpanPerAction(t *testing.T) {
	tracer := installRecorder(t)
	mw := OpenTelemetry()

	ctx := newActionCtx(widget.ActionUpload)
	var inner trace.Span
	err := mw.Handle(ctx, func() error {
		inner = SpanFromContext(ctx)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(tracer.spans) != 1 {
		t.Fatalf("%d spans, want 1", len(tracer.spans))
	}
	span := tracer.spans[0]
	if span.name != "docwidget.upload" {
		t.Errorf("span name = %q", span.name)
	}
	if !hasAttr(span.attrs, "docwidget.action", "upload") || !hasAttr(span.attrs, "docwidget.target", "uploadDocumentsBtn") {
		t.Errorf("attrs = %v", span.attrs)
	}
	if span.status != codes.Ok || !span.ended {
		t.Errorf("status = %v, ended = %v", span.status, span.ended)
	}
	if inner != trace.Span(span) {
		t.Error("handler context does not carry the action span")
	}
}

func TestOpenTelemetry_RecordsError(t *testing.T) {
	tracer := installRecorder(t)
	wantErr := errors.New("upload failed")

	err := OpenTelemetry().Handle(newActionCtx(widget.ActionUpload), func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v", err)
	}
	span := tracer.spans[0]
	if span.status != codes.Error || len(span.errs) != 1 {
		t.Errorf("status = %v, errs = %v", span.status, span.errs)
	}
}

func TestOpenTelemetry_FilterAndOptions(t *testing.T) {
	tracer := installRecorder(t)
	mw := OpenTelemetry(
		WithTracerName("custom"),
		WithIncludeTarget(false),
		WithActionFilter(func(ctx *widget.Context) bool { return ctx.Action() != widget.ActionAck }),
		WithAttributeExtractor(func(*widget.Context) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("tenant", "umrah")}
		}),
	)

	calls := 0
	mw.Handle(newActionCtx(widget.ActionAck), func() error { calls++; return nil })
	mw.Handle(newActionCtx(widget.ActionPreview), func() error { calls++; return nil })

	if calls != 2 {
		t.Fatalf("next called %d times, want 2", calls)
	}
	if len(tracer.spans) != 1 {
		t.Fatalf("%d spans, want 1 (ack filtered)", len(tracer.spans))
	}
	attrs := tracer.spans[0].attrs
	if !hasAttr(attrs, "tenant", "umrah") {
		t.Errorf("custom attribute missing: %v", attrs)
	}
	if hasAttr(attrs, "docwidget.target", "uploadDocumentsBtn") {
		t.Error("target recorded despite WithIncludeTarget(false)")
	}
}

func TestDefaultOTelConfig(t *testing.T) {
	config := defaultOTelConfig()
	if config.TracerName != defaultTracerName || !config.IncludeTarget {
		t.Errorf("config = %+v", config)
	}
}
