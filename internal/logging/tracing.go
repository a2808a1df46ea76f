package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Special fields understood by Cloud Logging
// https://docs.cloud.google.com/logging/docs/agent/logging/configuration#special-fields
const (
	cloudTraceKey   = "logging.googleapis.com/trace"
	cloudSpanKey    = "logging.googleapis.com/spanId"
	cloudSampledKey = "logging.googleapis.com/trace_sampled"
)

// cloudTraceHandler links log records to the active span in Cloud Trace.
// Only the *Context slog methods carry the span.
type cloudTraceHandler struct {
	next    slog.Handler
	project string
}

func NewGoogleCloudTracingLogHandler(next slog.Handler, project string) slog.Handler {
	return &cloudTraceHandler{next: next, project: project}
}

func (h *cloudTraceHandler) traceAttrs(sc trace.SpanContext) []slog.Attr {
	return []slog.Attr{
		slog.String(cloudTraceKey, "projects/"+h.project+"/traces/"+sc.TraceID().String()),
		slog.String(cloudSpanKey, sc.SpanID().String()),
		slog.Bool(cloudSampledKey, sc.IsSampled()),
	}
}

func (h *cloudTraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *cloudTraceHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(h.traceAttrs(sc)...)
	}
	return h.next.Handle(ctx, record)
}

func (h *cloudTraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &cloudTraceHandler{next: h.next.WithAttrs(attrs), project: h.project}
}

func (h *cloudTraceHandler) WithGroup(name string) slog.Handler {
	return &cloudTraceHandler{next: h.next.WithGroup(name), project: h.project}
}
