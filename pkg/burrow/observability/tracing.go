package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("burrow")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartAccessSpan starts a span covering one guard, from the start of
	// acquisition to release.
	StartAccessSpan(ctx context.Context, key, mode string) (context.Context, trace.Span)

	// StartTurnSpan starts a span for one simulation turn.
	StartTurnSpan(ctx context.Context, turn uint64) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartAccessSpan(ctx context.Context, key, mode string) (context.Context, trace.Span) {
	return StartAccessSpan(ctx, key, mode)
}

func (m *otelSpanManager) StartTurnSpan(ctx context.Context, turn uint64) (context.Context, trace.Span) {
	return tracer.Start(ctx, "burrow.turn",
		trace.WithAttributes(
			attribute.Int64("turn", int64(turn)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartAccessSpan starts a "burrow.access.<mode>" span using the global tracer.
func StartAccessSpan(ctx context.Context, key, mode string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "burrow.access."+mode,
		trace.WithAttributes(
			attribute.String("access.key", key),
			attribute.String("access.mode", mode),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
