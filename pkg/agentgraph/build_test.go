package agentgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/config"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

func TestBuildValidWorkflow(t *testing.T) {
	wf, err := NewBuilder(researcherWriterDoc(), tool.NewRegistry(), llm.NewMockClient("ok")).
		WithLogger(testLogger()).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "researcher", wf.EntryPoint())
	assert.ElementsMatch(t, []string{"researcher", "writer"}, wf.NodeIDs())
	assert.Equal(t, "writer", wf.successor("researcher"))
	assert.Equal(t, END, wf.successor("writer"))
	assert.False(t, wf.HasDispatch(), "no agent has tools")
}

func TestBuildValidationErrors(t *testing.T) {
	agents := []config.AgentSpec{{ID: "researcher", Role: "R", Goal: "G"}}

	tests := []struct {
		name    string
		orch    config.OrchestratorSpec
		wantErr error
	}{
		{
			name:    "entry point not set",
			orch:    config.OrchestratorSpec{Nodes: []string{"researcher"}},
			wantErr: ErrNoEntryPoint,
		},
		{
			name:    "entry point not a node",
			orch:    config.OrchestratorSpec{EntryPoint: "ghost", Nodes: []string{"researcher"}},
			wantErr: ErrEntryNotFound,
		},
		{
			name: "edge target not a node",
			orch: config.OrchestratorSpec{
				EntryPoint: "researcher",
				Nodes:      []string{"researcher"},
				Edges:      []config.Edge{{Source: "researcher", Target: "ghost"}},
			},
			wantErr: ErrNodeNotFound,
		},
		{
			name: "edge source not a node",
			orch: config.OrchestratorSpec{
				EntryPoint: "researcher",
				Nodes:      []string{"researcher"},
				Edges:      []config.Edge{{Source: "ghost", Target: "researcher"}},
			},
			wantErr: ErrNodeNotFound,
		},
		{
			name: "node without agent spec",
			orch: config.OrchestratorSpec{
				EntryPoint: "researcher",
				Nodes:      []string{"researcher", "ghost"},
			},
			wantErr: config.ErrAgentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf, err := NewBuilder(testDoc(agents, tt.orch), tool.NewRegistry(), llm.NewMockClient("ok")).
				WithLogger(testLogger()).
				Build()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, wf, "no partial graph on validation failure")
		})
	}
}

func TestBuildCollectsAllErrors(t *testing.T) {
	doc := testDoc(
		[]config.AgentSpec{{ID: "researcher"}},
		config.OrchestratorSpec{
			EntryPoint: "ghost",
			Nodes:      []string{"researcher"},
			Edges:      []config.Edge{{Source: "researcher", Target: "missing"}},
		},
	)

	_, err := NewBuilder(doc, tool.NewRegistry(), llm.NewMockClient("ok")).
		WithLogger(testLogger()).
		Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestBuildFirstEdgeWins(t *testing.T) {
	doc := testDoc(
		[]config.AgentSpec{
			{ID: "researcher"}, {ID: "writer"}, {ID: "editor"},
		},
		config.OrchestratorSpec{
			EntryPoint: "researcher",
			Nodes:      []string{"researcher", "writer", "editor"},
			Edges: []config.Edge{
				{Source: "researcher", Target: "writer"},
				{Source: "researcher", Target: "editor"},
			},
		},
	)

	wf, err := NewBuilder(doc, tool.NewRegistry(), llm.NewMockClient("ok")).
		WithLogger(testLogger()).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "writer", wf.successor("researcher"), "first-declared edge wins")
}

func TestBuildDispatchNodeOnlyWithBoundTools(t *testing.T) {
	registry := tool.NewRegistry()
	registry.Register("retriever", echoTool("retriever"))

	doc := researcherWriterDoc()
	doc.Agents[0].AllowedTools = []string{"retriever"}

	wf, err := NewBuilder(doc, registry, llm.NewMockClient("ok")).
		WithLogger(testLogger()).
		Build()
	require.NoError(t, err)
	assert.True(t, wf.HasDispatch())

	// Allowed tools that the registry cannot resolve bind nothing.
	doc = researcherWriterDoc()
	doc.Agents[0].AllowedTools = []string{"nonexistent"}
	wf, err = NewBuilder(doc, registry, llm.NewMockClient("ok")).
		WithLogger(testLogger()).
		Build()
	require.NoError(t, err)
	assert.False(t, wf.HasDispatch())
}

func TestBuildSeedsRoleSlots(t *testing.T) {
	doc := testDoc(
		[]config.AgentSpec{{ID: "researcher"}, {ID: "summarizer"}},
		config.OrchestratorSpec{
			EntryPoint: "researcher",
			Nodes:      []string{"researcher", "summarizer"},
			Edges:      []config.Edge{{Source: "researcher", Target: "summarizer"}},
		},
	)

	wf, err := NewBuilder(doc, tool.NewRegistry(), llm.NewMockClient("ok")).
		WithLogger(testLogger()).
		Build()
	require.NoError(t, err)

	assert.Contains(t, wf.slotNames, SlotResearchFindings)
	assert.Contains(t, wf.slotNames, SlotDraftContent)
	assert.Contains(t, wf.slotNames, SlotFinalContent)
	assert.Contains(t, wf.slotNames, "summarizer_output")
}

func TestNewBuilderPanicsOnNilDeps(t *testing.T) {
	doc := researcherWriterDoc()
	registry := tool.NewRegistry()
	client := llm.NewMockClient("ok")

	assert.Panics(t, func() { NewBuilder(nil, registry, client) })
	assert.Panics(t, func() { NewBuilder(doc, nil, client) })
	assert.Panics(t, func() { NewBuilder(doc, registry, nil) })
}

// An agent declared under the dispatch node's own id would be shadowed
// whenever any agent has tools; the builder rejects the id outright.
func TestBuildRejectsReservedNodeID(t *testing.T) {
	doc := testDoc(
		[]config.AgentSpec{
			{ID: "researcher", Role: "R", Goal: "G"},
			{ID: "tool_executor", Role: "R", Goal: "G"},
		},
		config.OrchestratorSpec{
			EntryPoint: "researcher",
			Nodes:      []string{"researcher", "tool_executor"},
			Edges:      []config.Edge{{Source: "researcher", Target: "tool_executor"}},
		},
	)

	wf, err := NewBuilder(doc, tool.NewRegistry(), llm.NewMockClient("ok")).
		WithLogger(testLogger()).
		Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReservedNodeID)
	assert.Nil(t, wf, "no partial graph on validation failure")
}
