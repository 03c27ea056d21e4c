package agentgraph

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/config"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDoc(agents []config.AgentSpec, orch config.OrchestratorSpec) *config.Workflow {
	return &config.Workflow{Agents: agents, Orchestrator: orch}
}

// researcherWriterDoc is the standard two agent pipeline used across
// the runner tests: researcher feeds writer, writer is terminal.
func researcherWriterDoc() *config.Workflow {
	return testDoc(
		[]config.AgentSpec{
			{ID: "researcher", Role: "Researcher", Goal: "Find information"},
			{ID: "writer", Role: "Writer", Goal: "Write content"},
		},
		config.OrchestratorSpec{
			EntryPoint:   "researcher",
			FinishPoints: config.StringList{"writer"},
			Nodes:        []string{"researcher", "writer"},
			Edges:        []config.Edge{{Source: "researcher", Target: "writer"}},
		},
	)
}

func echoTool(name string) tool.Tool {
	return tool.New(name, "echoes its arguments", func(_ context.Context, args json.RawMessage) (string, error) {
		return string(args), nil
	})
}
