package agentgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/checkpoint"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/event"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
)

// ErrNoCheckpointStore indicates Resume was called on a Runner built
// without a checkpoint store.
var ErrNoCheckpointStore = errors.New("agentgraph: no checkpoint store configured")

// Runner drives executions of one compiled Workflow. Each run owns a
// distinct thread id; no two controllers may drive the same thread
// concurrently. A Runner itself is safe for concurrent Run calls.
type Runner struct {
	graph    *Workflow
	store    checkpoint.Store
	bus      event.Bus
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	maxSteps int
}

// NewRunner creates a runner over a compiled workflow.
// Panics if graph is nil.
func NewRunner(graph *Workflow, opts ...RunnerOption) *Runner {
	if graph == nil {
		panic("agentgraph: workflow cannot be nil")
	}
	r := &Runner{
		graph:    graph,
		logger:   slog.Default(),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		maxSteps: defaultMaxSteps,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start creates a new run: a fresh thread id and a seeded state with
// all content slots declared null, step zero, empty history. When a
// checkpoint store is configured, the initial record is written so the
// thread is resumable before its first step.
func (r *Runner) Start(initialTask string, opts ...RunOption) (string, *SharedState) {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	threadID := cfg.threadID
	if threadID == "" {
		threadID = uuid.New().String()
	}

	state := NewSharedState(initialTask, r.graph.slotNames)
	logger := r.logger.With("thread_id", threadID)
	r.saveCheckpoint(context.Background(), logger, threadID, "", "", state, r.graph.entryPoint)
	return threadID, state
}

// Run executes the workflow for a new thread and returns its id plus
// the final state. A fault during execution never propagates: the
// returned state is then a synthesized terminal document with the
// error message set, a step counter of -1, and an empty history.
func (r *Runner) Run(ctx context.Context, initialTask string, opts ...RunOption) (string, *SharedState) {
	threadID, state := r.Start(initialTask, opts...)
	final := r.drive(ctx, threadID, state, r.graph.entryPoint, "")
	return threadID, final
}

// Resume continues an interrupted thread from its latest checkpoint.
// Returns checkpoint.ErrNotFound if the thread has no records, and the
// checkpointed state unchanged if the thread already reached END.
func (r *Runner) Resume(ctx context.Context, threadID string) (*SharedState, error) {
	if r.store == nil {
		return nil, ErrNoCheckpointStore
	}
	data, err := r.store.Latest(threadID)
	if err != nil {
		return nil, fmt.Errorf("resume thread %s: %w", threadID, err)
	}
	rec, err := checkpoint.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("resume thread %s: %w", threadID, err)
	}

	state := &SharedState{}
	if err := json.Unmarshal(rec.State, state); err != nil {
		return nil, fmt.Errorf("resume thread %s: decode state: %w", threadID, err)
	}
	if rec.NextNode == "" || rec.NextNode == END {
		return state, nil
	}
	return r.drive(ctx, threadID, state, rec.NextNode, rec.NodeID), nil
}

// drive is the step loop: execute the current node, apply its delta,
// checkpoint, resolve the next node, repeat until END. prevNode is the
// node executed before startNode, needed when resuming into the
// dispatch node so it can return control to its originating agent.
func (r *Runner) drive(ctx context.Context, threadID string, state *SharedState, startNode, prevNode string) (final *SharedState) {
	logger := r.logger.With("thread_id", threadID)
	started := time.Now()

	observability.LogRunStart(logger, threadID, startNode)
	r.publish(ctx, event.New(event.KindRunStarted, threadID))

	spanCtx, runSpan := r.spans.StartRunSpan(ctx, threadID)
	var fault error
	defer func() {
		r.spans.EndSpanWithError(runSpan, fault)
	}()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic during run", "panic", rec, "stack", string(debug.Stack()))
			fault = fmt.Errorf("panic: %v", rec)
			final = r.finishFault(ctx, logger, threadID, state.InitialTask, fault, started)
		}
	}()

	current := startNode
	prev := prevNode
	executed := 0

	for current != END {
		if executed >= r.maxSteps {
			fault = fmt.Errorf("exceeded maximum of %d steps at node %s", r.maxSteps, current)
			return r.finishFault(ctx, logger, threadID, state.InitialTask, fault, started)
		}
		select {
		case <-ctx.Done():
			fault = ctx.Err()
			return r.finishFault(ctx, logger, threadID, state.InitialTask, fault, started)
		default:
		}

		observability.LogNodeStart(logger, current, state.StepCounter+1)
		r.publish(ctx, event.New(event.KindNodeStarted, threadID).WithNode(current).WithStep(state.StepCounter+1))
		nodeCtx, nodeSpan := r.spans.StartNodeSpan(spanCtx, current)
		nodeCtx = withNodeLogger(nodeCtx, observability.EnrichLogger(r.logger, threadID, current, state.StepCounter+1))
		nodeCtx = withNodeObservability(nodeCtx, r.metrics, r.spans)

		nodeStart := time.Now()
		delta := r.executeNode(nodeCtx, current, state)
		state.apply(delta)
		executed++
		nodeDuration := time.Since(nodeStart)

		var nodeErr error
		if delta.ErrorMessage != "" {
			nodeErr = errors.New(delta.ErrorMessage)
		}
		r.metrics.RecordNodeExecution(nodeCtx, current, nodeDuration, nodeErr)
		r.spans.EndSpanWithError(nodeSpan, nodeErr)
		if nodeErr != nil {
			observability.LogNodeError(logger, current, nodeErr)
		} else {
			observability.LogNodeComplete(logger, current, float64(nodeDuration.Milliseconds()))
		}
		r.publish(ctx, event.New(event.KindNodeCompleted, threadID).WithNode(current).WithStep(state.StepCounter))
		if current == dispatchNodeID {
			r.publishToolEvents(ctx, threadID, state, delta)
		}

		next := r.resolveNext(current, prev, state)
		r.spans.AddSpanEvent(spanCtx, "transition",
			attribute.String("from", current), attribute.String("to", next))
		r.saveCheckpoint(ctx, logger, threadID, current, prev, state, next)

		prev = current
		current = next
	}

	duration := time.Since(started)
	if state.Failed() {
		observability.LogRunFault(logger, threadID, prev, *state.ErrorMessage, float64(duration.Milliseconds()))
		r.publish(ctx, event.New(event.KindRunFailed, threadID).WithStep(state.StepCounter).
			WithField("error", *state.ErrorMessage))
		r.metrics.RecordRun(ctx, false, duration)
	} else {
		observability.LogRunComplete(logger, threadID, float64(duration.Milliseconds()), state.StepCounter)
		r.publish(ctx, event.New(event.KindRunCompleted, threadID).WithStep(state.StepCounter))
		r.metrics.RecordRun(ctx, true, duration)
	}
	return state
}

// executeNode dispatches to the agent or tool node for the given id.
func (r *Runner) executeNode(ctx context.Context, nodeID string, state *SharedState) Delta {
	if nodeID == dispatchNodeID && r.graph.dispatch != nil {
		return r.graph.dispatch.execute(ctx, state)
	}
	agent, ok := r.graph.agents[nodeID]
	if !ok {
		// Unreachable after a successful Build. The panic is recovered
		// by drive and surfaces as a fault state.
		panic(fmt.Sprintf("agentgraph: unknown node %q", nodeID))
	}
	return agent.execute(ctx, state)
}

// resolveNext picks the next node. A recorded error is terminal. The
// dispatch node always returns to its originating agent. An agent with
// bound tools routes through the policy; everything else takes the
// static transition.
func (r *Runner) resolveNext(current, prev string, state *SharedState) string {
	if state.Failed() {
		return END
	}
	if current == dispatchNodeID {
		return prev
	}
	agent := r.graph.agents[current]
	if agent.hasTools() && r.graph.dispatch != nil && Route(state) == DecisionTools {
		return dispatchNodeID
	}
	return r.graph.successor(current)
}

// finishFault closes out a run that died outside the normal delta
// path. The caller gets a complete, well-formed document rather than
// an opaque fault: error message set, empty history, step -1.
func (r *Runner) finishFault(ctx context.Context, logger *slog.Logger, threadID, initialTask string, cause error, started time.Time) *SharedState {
	msg := fmt.Sprintf("Workflow execution failed: %v", cause)
	duration := time.Since(started)
	observability.LogRunFault(logger, threadID, "", msg, float64(duration.Milliseconds()))
	r.publish(ctx, event.New(event.KindRunFailed, threadID).WithField("error", msg))
	r.metrics.RecordRun(ctx, false, duration)

	state := &SharedState{
		InitialTask: initialTask,
		StepCounter: -1,
		History:     []Message{},
	}
	state.ErrorMessage = &msg
	return state
}

// saveCheckpoint persists the state after a node execution. Checkpoint
// failures are logged, not fatal: losing resumability should not kill
// an otherwise healthy run.
func (r *Runner) saveCheckpoint(ctx context.Context, logger *slog.Logger, threadID, nodeID, prevNode string, state *SharedState, next string) {
	if r.store == nil {
		return
	}
	stateBytes, err := json.Marshal(state)
	if err != nil {
		observability.LogCheckpointError(logger, nodeID, "serialize", err)
		return
	}
	rec := checkpoint.New(threadID, nodeID, state.StepCounter, stateBytes, next).WithPrevNode(prevNode)
	data, err := rec.Marshal()
	if err != nil {
		observability.LogCheckpointError(logger, nodeID, "marshal", err)
		return
	}
	if err := r.store.Save(threadID, state.StepCounter, data); err != nil {
		observability.LogCheckpointError(logger, nodeID, "save", err)
		return
	}
	observability.LogCheckpoint(logger, nodeID, state.StepCounter, len(data))
	r.metrics.RecordCheckpoint(ctx, nodeID, int64(len(data)))
	r.publish(ctx, event.New(event.KindCheckpointSaved, threadID).WithNode(nodeID).WithStep(state.StepCounter))
}

func (r *Runner) publish(ctx context.Context, evt event.Event) {
	if r.bus != nil {
		r.bus.Publish(ctx, evt)
	}
}

// publishToolEvents emits one tool.called event per tool message the
// dispatch node appended.
func (r *Runner) publishToolEvents(ctx context.Context, threadID string, state *SharedState, delta Delta) {
	for _, msg := range delta.Messages {
		if msg.Type != TypeTool {
			continue
		}
		r.publish(ctx, event.New(event.KindToolCalled, threadID).
			WithNode(dispatchNodeID).
			WithStep(state.StepCounter).
			WithField("tool_call_id", msg.ToolCallID))
	}
}
