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

// MetricsRecorder records dispatch metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records an event delivered to listeners.
	RecordDispatch(ctx context.Context, eventType string, listeners int, duration time.Duration)

	// RecordSkip records an event skipped because nobody listens for it.
	RecordSkip(ctx context.Context, eventType string)

	// RecordDrop records an event dropped for malformed data.
	RecordDrop(ctx context.Context, eventType string)

	// RecordListenerFailure records a listener error or panic.
	RecordListenerFailure(ctx context.Context, eventType string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatched       metric.Int64Counter
	dispatchLatency  metric.Float64Histogram
	skipped          metric.Int64Counter
	dropped          metric.Int64Counter
	listenerFailures metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("gatecore")

	dispatched, err := meter.Int64Counter("gatecore.events.dispatched",
		metric.WithDescription("Number of events delivered to listeners"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("gatecore.dispatch.latency_ms",
		metric.WithDescription("Hydration and delivery latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	skipped, err := meter.Int64Counter("gatecore.events.skipped",
		metric.WithDescription("Number of events with no registered listener"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter("gatecore.events.dropped",
		metric.WithDescription("Number of events dropped for malformed data"),
	)
	if err != nil {
		return nil, err
	}

	listenerFailures, err := meter.Int64Counter("gatecore.listener.failures",
		metric.WithDescription("Number of listener errors and panics"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatched:       dispatched,
		dispatchLatency:  dispatchLatency,
		skipped:          skipped,
		dropped:          dropped,
		listenerFailures: listenerFailures,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
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

func eventAttrs(eventType string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("event_type", eventType))
}

// RecordDispatch records a delivered event.
func (m *otelMetrics) RecordDispatch(ctx context.Context, eventType string, listeners int, duration time.Duration) {
	opt := eventAttrs(eventType)
	m.dispatched.Add(ctx, 1, opt)
	m.dispatchLatency.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

// RecordSkip records a fast-path skip.
func (m *otelMetrics) RecordSkip(ctx context.Context, eventType string) {
	m.skipped.Add(ctx, 1, eventAttrs(eventType))
}

// RecordDrop records a dropped event.
func (m *otelMetrics) RecordDrop(ctx context.Context, eventType string) {
	m.dropped.Add(ctx, 1, eventAttrs(eventType))
}

// RecordListenerFailure records a failed listener.
func (m *otelMetrics) RecordListenerFailure(ctx context.Context, eventType string) {
	m.listenerFailures.Add(ctx, 1, eventAttrs(eventType))
}
