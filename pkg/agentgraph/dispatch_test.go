package agentgraph

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

func TestDispatchExecutesCallsInOrder(t *testing.T) {
	registry := tool.NewRegistry()
	registry.Register("upper", tool.New("upper", "uppercases", func(_ context.Context, args json.RawMessage) (string, error) {
		return "UPPER:" + string(args), nil
	}))
	registry.Register("lower", tool.New("lower", "lowercases", func(_ context.Context, args json.RawMessage) (string, error) {
		return "lower:" + string(args), nil
	}))

	n := newDispatchNode(registry, testLogger())
	state := &SharedState{History: []Message{AIMessageWithCalls("", []llm.ToolCall{
		{ID: "c1", Name: "upper", Arguments: json.RawMessage(`"a"`)},
		{ID: "c2", Name: "lower", Arguments: json.RawMessage(`"b"`)},
	})}}

	d := n.execute(context.Background(), state)

	assert.Equal(t, 1, d.StepIncrement, "one increment per batch")
	require.Len(t, d.Messages, 2)
	assert.Equal(t, "c1", d.Messages[0].ToolCallID)
	assert.Equal(t, `UPPER:"a"`, d.Messages[0].Content)
	assert.Equal(t, "c2", d.Messages[1].ToolCallID)
	assert.Equal(t, `lower:"b"`, d.Messages[1].Content)
}

func TestDispatchUnresolvableToolDoesNotAbortBatch(t *testing.T) {
	registry := tool.NewRegistry()
	registry.Register("known", echoTool("known"))

	n := newDispatchNode(registry, testLogger())
	state := &SharedState{History: []Message{AIMessageWithCalls("", []llm.ToolCall{
		{ID: "c1", Name: "missing", Arguments: json.RawMessage(`{}`)},
		{ID: "c2", Name: "known", Arguments: json.RawMessage(`{"k":1}`)},
	})}}

	d := n.execute(context.Background(), state)

	require.Len(t, d.Messages, 2)
	assert.Equal(t, TypeTool, d.Messages[0].Type)
	assert.Contains(t, d.Messages[0].Content, `tool "missing" is not available`)
	assert.True(t, strings.HasPrefix(d.Messages[0].Content, "Error:"))
	assert.Equal(t, `{"k":1}`, d.Messages[1].Content, "sibling call still executed")
	assert.Empty(t, d.ErrorMessage, "tool resolution failures are not run failures")
}

func TestDispatchToolFailureBecomesErrorPayload(t *testing.T) {
	registry := tool.NewRegistry()
	registry.Register("flaky", tool.New("flaky", "always fails", func(_ context.Context, _ json.RawMessage) (string, error) {
		return "", errors.New("connection reset")
	}))

	n := newDispatchNode(registry, testLogger())
	state := &SharedState{History: []Message{AIMessageWithCalls("", []llm.ToolCall{
		{ID: "c1", Name: "flaky", Arguments: json.RawMessage(`{}`)},
	})}}

	d := n.execute(context.Background(), state)

	require.Len(t, d.Messages, 1)
	assert.Contains(t, d.Messages[0].Content, `tool "flaky" failed: connection reset`)
	assert.Equal(t, "c1", d.Messages[0].ToolCallID)
}

func TestDispatchWithoutPendingCalls(t *testing.T) {
	n := newDispatchNode(tool.NewRegistry(), testLogger())

	d := n.execute(context.Background(), &SharedState{History: []Message{AIMessage("no calls")}})

	assert.Equal(t, 1, d.StepIncrement)
	assert.Empty(t, d.Messages)
}
