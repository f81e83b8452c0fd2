package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	dwerrors "github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/widget"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func newActionCtx(action widget.Action) *widget.Context {
	return widget.NewContext(context.Background(), action, &widget.Event{Type: widget.EventClick, Target: "uploadDocumentsBtn"})
}

func TestMetrics_RecordsSuccessAndError(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
		mw := m.Middleware()

		if err := mw.Handle(newActionCtx(widget.ActionUpload), func() error { return nil }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := metricCounterValue(t, m.actionsTotal.WithLabelValues("upload", "success")); got != 1 {
			t.Fatalf("actions_total(success)=%v, want 1", got)
		}
		if got := metricCounterValue(t, m.actionsTotal.WithLabelValues("upload", "error")); got != 0 {
			t.Fatalf("actions_total(error)=%v, want 0", got)
		}
		if got := metricHistogramCount(t, m.actionDuration.WithLabelValues("upload")); got != 1 {
			t.Fatalf("action_duration count=%v, want 1", got)
		}
	})

	t.Run("error is labelled by code", func(t *testing.T) {
		m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
		mw := m.Middleware()
		wantErr := dwerrors.New("DW201").Wrap(errors.New("connection refused"))

		err := mw.Handle(newActionCtx(widget.ActionUpload), func() error { return wantErr })
		if !errors.Is(err, wantErr) {
			t.Fatalf("error = %v, want passthrough", err)
		}

		if got := metricCounterValue(t, m.actionsTotal.WithLabelValues("upload", "error")); got != 1 {
			t.Fatalf("actions_total(error)=%v, want 1", got)
		}
		if got := metricCounterValue(t, m.actionErrors.WithLabelValues("upload", "DW201")); got != 1 {
			t.Fatalf("action_errors_total(DW201)=%v, want 1", got)
		}
	})

	t.Run("uncoded error", func(t *testing.T) {
		m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
		m.Middleware().Handle(newActionCtx(widget.ActionPreview), func() error { return errors.New("boom") })

		if got := metricCounterValue(t, m.actionErrors.WithLabelValues("preview", "internal")); got != 1 {
			t.Fatalf("action_errors_total(internal)=%v, want 1", got)
		}
	})
}

func TestMetrics_SessionsAndSelections(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	m.RecordSessionCreate()
	m.RecordSessionCreate()
	m.RecordSessionDestroy()
	if got := metricGaugeValue(t, m.activeSessions); got != 1 {
		t.Errorf("active_sessions=%v, want 1", got)
	}

	m.RecordSelection(1500000)
	if got := metricHistogramCount(t, m.selectionBytes); got != 1 {
		t.Errorf("selection_bytes count=%v, want 1", got)
	}
}

func TestMetrics_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithConstLabels(prometheus.Labels{"env": "test"}))
	m.Middleware().Handle(newActionCtx(widget.ActionOpenDocuments), func() error { return nil })

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"docwidget_actions_total", "docwidget_action_duration_seconds"} {
		if !names[want] {
			t.Errorf("%s not gathered; got %v", want, names)
		}
	}
}
