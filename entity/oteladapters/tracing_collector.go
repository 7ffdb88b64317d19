package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	attrStatus = "status"
)

// TracingCollector implements entity.TracingCollector with an OpenTelemetry tracer.
// Spans started by it are children of the span in the given context.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a TracingCollector, tracer usually comes from the TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan implements entity.TracingCollector.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, entity.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attributes(attrs)...))

	return spanCtx, &SpanContext{span: span}
}

// FinishSpan implements entity.TracingCollector. Span contexts not started by a TracingCollector
// are ignored.
func (t *TracingCollector) FinishSpan(spanCtx entity.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*SpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(attributes(attrs)...)
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

var _ entity.TracingCollector = (*TracingCollector)(nil)

// SpanContext implements entity.SpanContext on an OpenTelemetry span.
type SpanContext struct {
	span trace.Span
}

// SetStatus maps the status of an entity store operation to the span status.
// Unknown statuses are kept as the status attribute.
func (s *SpanContext) SetStatus(status string) {
	switch status {
	case statusSuccess, "ok":
		s.span.SetStatus(codes.Ok, "")
	case statusError:
		s.span.SetStatus(codes.Error, "operation failed")
	case "canceled", "cancelled":
		s.span.SetStatus(codes.Error, "operation canceled")
	default:
		s.span.SetAttributes(attribute.String(attrStatus, status))
	}
}

// AddAttribute implements entity.SpanContext.
func (s *SpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ entity.SpanContext = (*SpanContext)(nil)
