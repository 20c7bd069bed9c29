package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("burrow")

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		tracer = otel.Tracer("burrow")
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func attr(s tracetest.SpanStub, key string) attribute.Value {
	for _, kv := range s.Attributes {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestStartAccessSpan(t *testing.T) {
	exporter := setupTracingTest(t)

	ctx, span := StartAccessSpan(context.Background(), "Position", "write")
	require.NotNil(t, span)
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "burrow.access.write", s.Name)
	assert.Equal(t, "Position", attr(s, "access.key").AsString())
	assert.Equal(t, "write", attr(s, "access.mode").AsString())
	assert.Equal(t, codes.Ok, s.Status.Code)
}

func TestSpanManager(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, turn := sm.StartTurnSpan(context.Background(), 3)
	_, access := sm.StartAccessSpan(ctx, "Map", "read")
	sm.AddSpanEvent(ctx, "player moved", attribute.Int("dx", 1))
	sm.EndSpanWithError(access, nil)
	sm.EndSpanWithError(turn, errors.New("blocked"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	accessSpan, turnSpan := spans[0], spans[1]
	assert.Equal(t, "burrow.access.read", accessSpan.Name)
	assert.Equal(t, turnSpan.SpanContext.SpanID(), accessSpan.Parent.SpanID())

	assert.Equal(t, "burrow.turn", turnSpan.Name)
	assert.Equal(t, int64(3), attr(turnSpan, "turn").AsInt64())
	assert.Equal(t, codes.Error, turnSpan.Status.Code)
	assert.Equal(t, "blocked", turnSpan.Status.Description)
	require.Len(t, turnSpan.Events, 2) // "player moved" + recorded error
	assert.Equal(t, "player moved", turnSpan.Events[0].Name)
}

func TestEndSpanWithErrorNil(t *testing.T) {
	assert.NotPanics(t, func() { EndSpanWithError(nil, nil) })
}

func TestAddSpanEventWithoutSpan(t *testing.T) {
	assert.NotPanics(t, func() { AddSpanEvent(context.Background(), "nothing") })
}

func TestNoopSpanManager(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NoopSpanManager{}

	ctx := context.Background()
	got, span := sm.StartAccessSpan(ctx, "Map", "read")
	assert.Equal(t, ctx, got)
	assert.False(t, span.IsRecording())

	got, span = sm.StartTurnSpan(ctx, 1)
	assert.Equal(t, ctx, got)
	sm.AddSpanEvent(ctx, "x")
	sm.EndSpanWithError(span, errors.New("ignored"))

	assert.Empty(t, exporter.GetSpans())
}
