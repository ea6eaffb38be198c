// Package observability provides structured logging, metrics, and tracing
// for gatecore dispatch.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds shard context to a logger.
// Returns a new logger with the shard_id field.
//
// Example:
//
//	enriched := EnrichLogger(logger, 3)
//	enriched.Info("resumed") // includes shard_id
func EnrichLogger(logger *slog.Logger, shardID int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.Int("shard_id", shardID))
}

// LogDispatch logs a delivered event.
func LogDispatch(logger *slog.Logger, eventType, dispatchID string, listeners int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event dispatched",
		slog.String("event_type", eventType),
		slog.String("dispatch_id", dispatchID),
		slog.Int("listeners", listeners),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDrop logs an event dropped because its data could not be hydrated.
func LogDrop(logger *slog.Logger, eventType string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("event dropped",
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// LogListenerFailure logs a listener that returned an error or panicked.
// Delivery to the remaining listeners continues.
func LogListenerFailure(logger *slog.Logger, eventType string, listenerID uint64, err error) {
	if logger == nil {
		return
	}
	logger.Error("listener failed",
		slog.String("event_type", eventType),
		slog.Uint64("listener_id", listenerID),
		slog.String("error", err.Error()),
	)
}

// LogDropLogError logs a failure to persist a drop record (non-fatal).
func LogDropLogError(logger *slog.Logger, eventType string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("drop log append failed",
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// LogShardStart logs the start of a shard's frame loop.
func LogShardStart(logger *slog.Logger, shardID int) {
	if logger == nil {
		return
	}
	logger.Info("shard starting",
		slog.Int("shard_id", shardID),
	)
}

// LogShardStop logs the end of a shard's frame loop.
func LogShardStop(logger *slog.Logger, shardID int, frames int64, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Error("shard stopped",
			slog.Int("shard_id", shardID),
			slog.Int64("frames", frames),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Info("shard stopped",
		slog.Int("shard_id", shardID),
		slog.Int64("frames", frames),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
