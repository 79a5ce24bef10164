package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span wraps an OpenTelemetry span for convenience.
type Span struct {
	span trace.Span
}

// NewSpan starts a new span and returns the wrapper and updated context.
func NewSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (*Span, context.Context) {
	ctx, span := Tracer.Start(ctx, name, opts...)
	return &Span{span: span}, ctx
}

// StartRepositorySpan starts an internal span named repository.<operation>.
func StartRepositorySpan(ctx context.Context, operation, backend string) (*Span, context.Context) {
	s, ctx := NewSpan(ctx, "repository."+operation, trace.WithSpanKind(trace.SpanKindInternal))
	s.AddAttributes(
		attribute.String("db.operation", operation),
		attribute.String("repository.backend", backend),
	)
	return s, ctx
}

// StartRedisSpan starts a client span named redis.<operation>.
func StartRedisSpan(ctx context.Context, operation string) (*Span, context.Context) {
	s, ctx := NewSpan(ctx, "redis."+operation, trace.WithSpanKind(trace.SpanKindClient))
	s.AddAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", operation),
	)
	return s, ctx
}

// AddAttributes sets attributes on the span.
func (s *Span) AddAttributes(attrs ...attribute.KeyValue) {
	if s.span != nil {
		s.span.SetAttributes(attrs...)
	}
}

// SetError records the error on the span and sets span status to Error.
func (s *Span) SetError(err error) {
	if s.span != nil && err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
}

// End ends the span.
func (s *Span) End() {
	if s.span != nil {
		s.span.End()
	}
}

// TraceID returns the trace ID of the span.
func (s *Span) TraceID() string {
	if s.span != nil {
		return s.span.SpanContext().TraceID().String()
	}
	return ""
}
