package main

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/randalmurphal/burrow/pkg/burrow/config"
	"github.com/randalmurphal/burrow/pkg/burrow/observability"
)

// telemetry holds the OTel providers installed for a run. Metrics are
// collected once at shutdown and written to the log; spans are logged as
// they end.
type telemetry struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	reader         *sdkmetric.ManualReader
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

func setupTelemetry(s config.Settings, logger *slog.Logger) *telemetry {
	t := &telemetry{
		logger:  logger,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	if s.Metrics {
		t.reader = sdkmetric.NewManualReader()
		t.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(t.reader))
		otel.SetMeterProvider(t.meterProvider)
		t.metrics = observability.NewMetricsRecorder()
	}
	if s.Tracing {
		t.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(&logExporter{logger: logger.With(slog.String("component", "trace"))}),
		)
		otel.SetTracerProvider(t.tracerProvider)
		t.spans = observability.NewSpanManager()
	}
	return t
}

// shutdown logs the final metric values and stops both providers.
func (t *telemetry) shutdown(ctx context.Context) {
	var errs []error
	if t.reader != nil {
		var rm metricdata.ResourceMetrics
		if err := t.reader.Collect(ctx, &rm); err != nil {
			errs = append(errs, err)
		} else {
			logMetrics(t.logger, rm)
		}
	}
	if t.meterProvider != nil {
		errs = append(errs, t.meterProvider.Shutdown(ctx))
	}
	if t.tracerProvider != nil {
		errs = append(errs, t.tracerProvider.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		t.logger.Warn("telemetry shutdown", slog.String("error", err.Error()))
	}
}

func logMetrics(logger *slog.Logger, rm metricdata.ResourceMetrics) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				logger.Info("metric", slog.String("name", m.Name), slog.Int64("value", total))
			case metricdata.Histogram[float64]:
				var (
					count uint64
					sum   float64
				)
				for _, dp := range data.DataPoints {
					count += dp.Count
					sum += dp.Sum
				}
				logger.Info("metric",
					slog.String("name", m.Name),
					slog.Uint64("count", count),
					slog.Float64("sum", sum),
				)
			}
		}
	}
}

// logExporter writes finished spans to the log. The game owns the terminal
// and the pack carries no collector exporter, so the log is the sink.
type logExporter struct {
	logger *slog.Logger
}

func (e *logExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		attrs := []any{
			slog.String("name", s.Name()),
			slog.String("trace_id", s.SpanContext().TraceID().String()),
			slog.Float64("duration_ms", float64(s.EndTime().Sub(s.StartTime()).Microseconds())/1000),
			slog.String("status", s.Status().Code.String()),
		}
		for _, kv := range s.Attributes() {
			attrs = append(attrs, slog.String(string(kv.Key), kv.Value.Emit()))
		}
		e.logger.Debug("span", attrs...)
	}
	return nil
}

func (e *logExporter) Shutdown(context.Context) error {
	return nil
}
