package agentgraph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

// dispatchNodeID is the graph id of the shared tool dispatch node.
const dispatchNodeID = "tool_executor"

// dispatchNode services the tool calls of the most recent ai message.
// One instance is shared by all agents; its transition always returns
// to the agent whose calls it just serviced.
type dispatchNode struct {
	registry *tool.Registry
	logger   *slog.Logger
}

func newDispatchNode(registry *tool.Registry, logger *slog.Logger) *dispatchNode {
	return &dispatchNode{
		registry: registry,
		logger:   logger.With("node_id", dispatchNodeID),
	}
}

// execute runs every call of the last ai message in order. A failing
// call yields a tool message with an error payload; it never aborts
// its siblings. The step counter increments once for the whole batch.
func (n *dispatchNode) execute(ctx context.Context, state *SharedState) Delta {
	d := Delta{StepIncrement: 1}
	logger := nodeLogger(ctx, n.logger)

	last, ok := state.LastMessage()
	if !ok || !last.HasToolCalls() {
		logger.Warn("dispatch invoked without pending tool calls")
		return d
	}

	d.Messages = make([]Message, 0, len(last.ToolCalls))
	for _, call := range last.ToolCalls {
		d.Messages = append(d.Messages, n.runCall(ctx, logger, call))
	}
	return d
}

func (n *dispatchNode) runCall(ctx context.Context, logger *slog.Logger, call llm.ToolCall) Message {
	t, ok := n.registry.Resolve(call.Name)
	if !ok {
		err := &ToolResolutionError{Name: call.Name}
		logger.Error("tool resolution failed", "tool", call.Name)
		return ToolMessage(call.ID, "Error: "+err.Error())
	}

	spans := nodeSpans(ctx)
	toolCtx, span := spans.StartToolSpan(ctx, call.Name)
	start := time.Now()
	output, err := t.Execute(toolCtx, call.Arguments)
	duration := time.Since(start)
	spans.EndSpanWithError(span, err)
	nodeMetrics(ctx).RecordToolCall(ctx, call.Name, duration, err)
	observability.LogToolCall(logger, call.Name, float64(duration.Milliseconds()), err)
	if err != nil {
		return ToolMessage(call.ID, fmt.Sprintf("Error: tool %q failed: %v", call.Name, err))
	}
	return ToolMessage(call.ID, output)
}
