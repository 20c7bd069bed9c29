// Package observability provides burrow's structured logging, metrics and
// tracing helpers.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled. The
// log helpers accept a nil logger and do nothing with it.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds the goroutine role and game session to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "simulation", sessionID)
//	enriched.Info("turn applied") // includes component and session_id
func EnrichLogger(logger *slog.Logger, component, sessionID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("component", component),
		slog.String("session_id", sessionID),
	)
}

// LogAccessorCreated logs the lazy creation of a key's accessor.
func LogAccessorCreated(logger *slog.Logger, key string) {
	if logger == nil {
		return
	}
	logger.Debug("accessor created",
		slog.String("key", key),
	)
}

// LogAcquired logs a granted read or write acquisition.
func LogAcquired(logger *slog.Logger, key, mode string, waitMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("access acquired",
		slog.String("key", key),
		slog.String("mode", mode),
		slog.Float64("wait_ms", waitMs),
	)
}

// LogReleased logs a guard release.
func LogReleased(logger *slog.Logger, key, mode string, heldMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("access released",
		slog.String("key", key),
		slog.String("mode", mode),
		slog.Float64("held_ms", heldMs),
	)
}

// LogFatal logs a condition that is about to take the process or a goroutine
// down.
func LogFatal(logger *slog.Logger, component string, err error) {
	if logger == nil {
		return
	}
	logger.Error("fatal",
		slog.String("component", component),
		slog.String("error", err.Error()),
	)
}

// LogTick logs one controller loop iteration.
func LogTick(logger *slog.Logger, turn uint64, state string) {
	if logger == nil {
		return
	}
	logger.Debug("tick",
		slog.Uint64("turn", turn),
		slog.String("run_state", state),
	)
}

// LogSaved logs a savegame write.
func LogSaved(logger *slog.Logger, sessionID string, turn uint64, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Info("game saved",
		slog.String("session_id", sessionID),
		slog.Uint64("turn", turn),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogSaveError logs a savegame failure (non-fatal).
func LogSaveError(logger *slog.Logger, sessionID string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("savegame failed",
		slog.String("session_id", sessionID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
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
