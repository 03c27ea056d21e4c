package agentgraph

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/config"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

// TestAcceptance_ResearchThenDraft runs the canonical two-agent
// pipeline: researcher feeds writer, neither has tools. The run must end
// with the draft populated, the final content still unset, two ai
// messages, and no error.
func TestAcceptance_ResearchThenDraft(t *testing.T) {
	client := llm.NewMockClient("").WithResponses("research results", "the draft text")
	wf := buildWorkflow(t, researcherWriterDoc(), tool.NewRegistry(), client)
	runner := NewRunner(wf, WithLogger(testLogger()))

	threadID, final := runner.Run(context.Background(), "Explain caching")

	assert.NotEmpty(t, threadID)
	assert.False(t, final.Failed())
	assert.Equal(t, 2, final.StepCounter)

	findings, ok := final.Slot(SlotResearchFindings)
	require.True(t, ok)
	assert.Equal(t, "research results", findings)
	draft, ok := final.Slot(SlotDraftContent)
	require.True(t, ok)
	assert.Equal(t, "the draft text", draft)
	_, ok = final.Slot(SlotFinalContent)
	assert.False(t, ok, "no editor ran")

	assert.Equal(t, 2, countByType(final.History, TypeAI))
	assert.Len(t, final.History, 2)
}

// TestAcceptance_WriterWithoutFindings starts at the writer with no
// research findings to work from. The task determination failure
// terminates the run with the error recorded in state, never as a
// returned error, and the model is never called.
func TestAcceptance_WriterWithoutFindings(t *testing.T) {
	client := llm.NewMockClient("never called")
	doc := testDoc(
		[]config.AgentSpec{{ID: "writer", Role: "Writer", Goal: "Write"}},
		config.OrchestratorSpec{EntryPoint: "writer", Nodes: []string{"writer"}},
	)
	wf := buildWorkflow(t, doc, tool.NewRegistry(), client)
	runner := NewRunner(wf, WithLogger(testLogger()))

	_, final := runner.Run(context.Background(), "Explain caching")

	require.True(t, final.Failed())
	assert.Equal(t, "Task determination failed for writer", *final.ErrorMessage)
	_, ok := final.Slot(SlotDraftContent)
	assert.False(t, ok)
	assert.Zero(t, client.CallCount())
}

// TestAcceptance_ToolResolutionFailure has the researcher request a
// tool the registry cannot resolve. The dispatch node reports the
// failure as a tool message, control returns to the researcher, and the
// run still reaches the writer.
func TestAcceptance_ToolResolutionFailure(t *testing.T) {
	registry := tool.NewRegistry()
	registry.Register("retriever", echoTool("retriever"))

	client := llm.NewMockClient("").WithScriptedResponses(
		llm.CompletionResponse{
			Content:   "",
			ToolCalls: []llm.ToolCall{{ID: "c1", Name: "vanished_tool", Arguments: json.RawMessage(`{}`)}},
		},
		llm.CompletionResponse{Content: "findings despite tool failure", FinishReason: "stop"},
		llm.CompletionResponse{Content: "the draft", FinishReason: "stop"},
	)

	doc := researcherWriterDoc()
	doc.Agents[0].AllowedTools = []string{"retriever"}
	wf := buildWorkflow(t, doc, registry, client)
	runner := NewRunner(wf, WithLogger(testLogger()))

	_, final := runner.Run(context.Background(), "Explain caching")

	require.False(t, final.Failed())
	require.Len(t, final.History, 4)

	// ai(tool call) -> tool(error payload) -> ai -> ai
	assert.True(t, final.History[0].HasToolCalls())
	toolMsg := final.History[1]
	assert.Equal(t, TypeTool, toolMsg.Type)
	assert.Equal(t, "c1", toolMsg.ToolCallID)
	assert.Contains(t, toolMsg.Content, `tool "vanished_tool" is not available`)

	findings, ok := final.Slot(SlotResearchFindings)
	require.True(t, ok)
	assert.Equal(t, "findings despite tool failure", findings)
	draft, ok := final.Slot(SlotDraftContent)
	require.True(t, ok, "run still reached the writer")
	assert.Equal(t, "the draft", draft)
}

// TestAcceptance_FullPipeline runs researcher, writer, and editor in
// sequence and checks the serialized state document at the end.
func TestAcceptance_FullPipeline(t *testing.T) {
	client := llm.NewMockClient("").WithResponses("findings", "the draft", "the polished text")
	doc := testDoc(
		[]config.AgentSpec{
			{ID: "researcher", Role: "Researcher", Goal: "Find info"},
			{ID: "writer", Role: "Writer", Goal: "Write", Knowledge: config.New(map[string]any{"format": "markdown"})},
			{ID: "editor", Role: "Editor", Goal: "Polish"},
		},
		config.OrchestratorSpec{
			EntryPoint: "researcher",
			Nodes:      []string{"researcher", "writer", "editor"},
			Edges: []config.Edge{
				{Source: "researcher", Target: "writer"},
				{Source: "writer", Target: "editor"},
			},
			FinishPoints: config.StringList{"editor"},
		},
	)
	wf := buildWorkflow(t, doc, tool.NewRegistry(), client)
	runner := NewRunner(wf, WithLogger(testLogger()))

	_, final := runner.Run(context.Background(), "Explain caching")

	require.False(t, final.Failed())
	assert.Equal(t, 3, final.StepCounter)
	polished, ok := final.Slot(SlotFinalContent)
	require.True(t, ok)
	assert.Equal(t, "the polished text", polished)

	data, err := json.Marshal(final)
	require.NoError(t, err)
	var document map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &document))
	assert.JSONEq(t, `"Explain caching"`, string(document["initial_task"]))
	assert.JSONEq(t, `"the polished text"`, string(document["final_content"]))
	assert.JSONEq(t, `null`, string(document["error_message"]))
	assert.JSONEq(t, `3`, string(document["current_step"]))
}
