package agentgraph

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
)

type loggerKey struct{}
type metricsKey struct{}
type spansKey struct{}

// withNodeLogger attaches a run-scoped logger to the context. The
// runner enriches it with thread id, node id, and step before each
// node execution.
func withNodeLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// nodeLogger returns the run-scoped logger from the context, or the
// fallback when the node runs outside a controller (direct calls in
// tests).
func nodeLogger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return fallback
}

// withNodeObservability attaches the runner's metrics recorder and span
// manager to the context so nodes can instrument their own work.
func withNodeObservability(ctx context.Context, m observability.MetricsRecorder, s observability.SpanManager) context.Context {
	ctx = context.WithValue(ctx, metricsKey{}, m)
	return context.WithValue(ctx, spansKey{}, s)
}

// nodeMetrics returns the run-scoped metrics recorder, or a no-op for
// nodes running outside a controller.
func nodeMetrics(ctx context.Context) observability.MetricsRecorder {
	if m, ok := ctx.Value(metricsKey{}).(observability.MetricsRecorder); ok && m != nil {
		return m
	}
	return observability.NoopMetrics{}
}

// nodeSpans returns the run-scoped span manager, or a no-op.
func nodeSpans(ctx context.Context) observability.SpanManager {
	if s, ok := ctx.Value(spansKey{}).(observability.SpanManager); ok && s != nil {
		return s
	}
	return observability.NoopSpanManager{}
}
