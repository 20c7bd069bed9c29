package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records burrow metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordAcquire records a granted acquisition and how long it waited.
	RecordAcquire(ctx context.Context, key, mode string, wait time.Duration)

	// RecordRelease records how long a guard was held.
	RecordRelease(ctx context.Context, key, mode string, held time.Duration)

	// RecordAccessorCreated records the lazy creation of an accessor.
	RecordAccessorCreated(ctx context.Context, key string)

	// RecordSave records a savegame write.
	RecordSave(ctx context.Context, sizeBytes int64, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	acquisitions metric.Int64Counter
	waitLatency  metric.Float64Histogram
	holdLatency  metric.Float64Histogram
	accessors    metric.Int64UpDownCounter
	saveSize     metric.Int64Histogram
	saveErrors   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("burrow")

	acquisitions, err := meter.Int64Counter("burrow.access.acquisitions",
		metric.WithDescription("Number of granted access acquisitions"),
	)
	if err != nil {
		return nil, err
	}

	waitLatency, err := meter.Float64Histogram("burrow.access.wait_ms",
		metric.WithDescription("Time spent blocked before an acquisition was granted"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	holdLatency, err := meter.Float64Histogram("burrow.access.hold_ms",
		metric.WithDescription("Time a guard was held before release"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	accessors, err := meter.Int64UpDownCounter("burrow.access.accessors",
		metric.WithDescription("Number of live per-key accessors"),
	)
	if err != nil {
		return nil, err
	}

	saveSize, err := meter.Int64Histogram("burrow.savegame.size_bytes",
		metric.WithDescription("Encoded savegame snapshot size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	saveErrors, err := meter.Int64Counter("burrow.savegame.errors",
		metric.WithDescription("Number of failed savegame writes"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		acquisitions: acquisitions,
		waitLatency:  waitLatency,
		holdLatency:  holdLatency,
		accessors:    accessors,
		saveSize:     saveSize,
		saveErrors:   saveErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func accessAttrs(key, mode string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("key", key),
		attribute.String("mode", mode),
	)
}

// RecordAcquire records a granted acquisition.
func (m *otelMetrics) RecordAcquire(ctx context.Context, key, mode string, wait time.Duration) {
	attrs := accessAttrs(key, mode)
	m.acquisitions.Add(ctx, 1, attrs)
	m.waitLatency.Record(ctx, ms(wait), attrs)
}

// RecordRelease records a guard release.
func (m *otelMetrics) RecordRelease(ctx context.Context, key, mode string, held time.Duration) {
	m.holdLatency.Record(ctx, ms(held), accessAttrs(key, mode))
}

// RecordAccessorCreated records a new accessor.
func (m *otelMetrics) RecordAccessorCreated(ctx context.Context, key string) {
	m.accessors.Add(ctx, 1, metric.WithAttributes(attribute.String("key", key)))
}

// RecordSave records a savegame write.
func (m *otelMetrics) RecordSave(ctx context.Context, sizeBytes int64, err error) {
	if err != nil {
		m.saveErrors.Add(ctx, 1)
		return
	}
	m.saveSize.Record(ctx, sizeBytes)
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
