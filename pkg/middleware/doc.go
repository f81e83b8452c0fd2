// Package middleware provides action middleware for the document widget.
//
// This package includes:
//   - Prometheus metrics for every dispatched action
//   - OpenTelemetry tracing for every dispatched action
//
// # Prometheus Metrics
//
//	metrics := middleware.NewMetrics(middleware.WithNamespace("docwidget"))
//	ctrl, _ := widget.New(doc, cfg, deps, widget.WithMiddleware(metrics.Middleware()))
//
//	http.Handle("/metrics", promhttp.Handler())
//
// Collected:
//   - docwidget_actions_total{action,status}
//   - docwidget_action_duration_seconds{action}
//   - docwidget_action_errors_total{action,code}
//   - docwidget_active_sessions
//   - docwidget_selection_bytes
//
// # OpenTelemetry
//
//	widget.WithMiddleware(middleware.OpenTelemetry(middleware.WithTracerName("docwidget")))
//
// Spans are named docwidget.<action> and carry the event type and target.
// The span context replaces Context.StdContext, so calls to the upload
// endpoint become child spans.
package middleware
