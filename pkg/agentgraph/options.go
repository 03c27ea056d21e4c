package agentgraph

import (
	"log/slog"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/checkpoint"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/event"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
)

// defaultMaxSteps bounds the node executions of one run. Tool
// round-trips can loop an agent, so runaway configurations must hit a
// ceiling instead of spinning forever.
const defaultMaxSteps = 100

// RunnerOption configures a Runner at construction.
type RunnerOption func(*Runner)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCheckpointStore enables per-step state persistence. Without a
// store, runs execute normally but cannot be inspected or resumed.
func WithCheckpointStore(store checkpoint.Store) RunnerOption {
	return func(r *Runner) {
		r.store = store
	}
}

// WithEventBus publishes run lifecycle events to the given bus.
func WithEventBus(bus event.Bus) RunnerOption {
	return func(r *Runner) {
		r.bus = bus
	}
}

// WithMetrics sets the metrics recorder. Defaults to a no-op.
func WithMetrics(m observability.MetricsRecorder) RunnerOption {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithSpans sets the span manager for tracing. Defaults to a no-op.
func WithSpans(s observability.SpanManager) RunnerOption {
	return func(r *Runner) {
		if s != nil {
			r.spans = s
		}
	}
}

// WithMaxSteps overrides the per-run node execution ceiling.
func WithMaxSteps(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

// RunOption configures a single run.
type RunOption func(*runConfig)

type runConfig struct {
	threadID string
}

// WithThreadID pins the run's thread id instead of generating one.
// The caller must guarantee no other controller holds the same id.
func WithThreadID(id string) RunOption {
	return func(c *runConfig) {
		c.threadID = id
	}
}
