// Package observability provides structured logging, metrics, and
// tracing for workflow runs.
//
// Logging uses slog. Metrics and tracing use OpenTelemetry through the
// global providers and degrade to no-ops when no provider is set.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds run context to a logger.
// Returns a new logger with thread_id, node_id, and step fields.
func EnrichLogger(logger *slog.Logger, threadID, nodeID string, step int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("thread_id", threadID),
		slog.String("node_id", nodeID),
		slog.Int("step", step),
	)
}

// LogRunStart logs the start of a workflow run.
func LogRunStart(logger *slog.Logger, threadID, entryPoint string) {
	if logger == nil {
		return
	}
	logger.Info("workflow run starting",
		slog.String("thread_id", threadID),
		slog.String("entry_point", entryPoint),
	)
}

// LogRunComplete logs successful run completion.
func LogRunComplete(logger *slog.Logger, threadID string, durationMs float64, steps int) {
	if logger == nil {
		return
	}
	logger.Info("workflow run completed",
		slog.String("thread_id", threadID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("steps", steps),
	)
}

// LogRunFault logs a run that terminated with a fault state.
func LogRunFault(logger *slog.Logger, threadID, nodeID, message string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("workflow run faulted",
		slog.String("thread_id", threadID),
		slog.String("node_id", nodeID),
		slog.String("error", message),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogNodeStart logs node execution start.
func LogNodeStart(logger *slog.Logger, nodeID string, step int) {
	if logger == nil {
		return
	}
	logger.Debug("node starting",
		slog.String("node_id", nodeID),
		slog.Int("step", step),
	)
}

// LogNodeComplete logs successful node completion.
func LogNodeComplete(logger *slog.Logger, nodeID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("node completed",
		slog.String("node_id", nodeID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogNodeError logs node execution error.
func LogNodeError(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("node failed",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogModelCall logs a completed model invocation.
func LogModelCall(logger *slog.Logger, nodeID, model string, durationMs float64, toolCalls int) {
	if logger == nil {
		return
	}
	logger.Debug("model call completed",
		slog.String("node_id", nodeID),
		slog.String("model", model),
		slog.Float64("duration_ms", durationMs),
		slog.Int("tool_calls", toolCalls),
	)
}

// LogToolCall logs a tool execution.
func LogToolCall(logger *slog.Logger, toolName string, durationMs float64, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Warn("tool execution failed",
			slog.String("tool", toolName),
			slog.Float64("duration_ms", durationMs),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("tool executed",
		slog.String("tool", toolName),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCheckpoint logs checkpoint creation.
func LogCheckpoint(logger *slog.Logger, nodeID string, step, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint saved",
		slog.String("node_id", nodeID),
		slog.Int("step", step),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogCheckpointError logs checkpoint failure (non-fatal).
func LogCheckpointError(logger *slog.Logger, nodeID string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("checkpoint failed",
		slog.String("node_id", nodeID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
