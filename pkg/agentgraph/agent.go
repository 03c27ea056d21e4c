package agentgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/config"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/template"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

// Content slots owned by the standard agent roles.
const (
	SlotResearchFindings = "research_findings"
	SlotDraftContent     = "draft_content"
	SlotFinalContent     = "final_content"
)

// Standard role classes behind the id/role keyed logic.
const (
	classResearcher = "researcher"
	classWriter     = "writer"
	classEditor     = "editor"
)

// roleClass maps an agent to a standard role: the id prefix decides
// first, the role text second, so specs with opaque ids still get role
// behavior. Empty means no standard role.
func roleClass(agentID, role string) string {
	switch {
	case strings.HasPrefix(agentID, classResearcher):
		return classResearcher
	case strings.HasPrefix(agentID, classWriter):
		return classWriter
	case strings.HasPrefix(agentID, classEditor):
		return classEditor
	}
	r := strings.ToLower(role)
	switch {
	case strings.Contains(r, "research"):
		return classResearcher
	case strings.Contains(r, "writ"):
		return classWriter
	case strings.Contains(r, "edit"):
		return classEditor
	}
	return ""
}

// OutputSlot returns the content slot an agent writes its response to.
// Agents outside the standard roles get a per-agent key so output is
// never silently discarded.
func OutputSlot(agentID, role string) string {
	switch roleClass(agentID, role) {
	case classResearcher:
		return SlotResearchFindings
	case classWriter:
		return SlotDraftContent
	case classEditor:
		return SlotFinalContent
	default:
		return agentID + "_output"
	}
}

// agentNode is one workflow step. Immutable after build.
type agentNode struct {
	id        string
	class     string
	role      string
	goal      string
	knowledge config.Config
	overrides *config.LLMOverrides

	client      llm.Client
	tools       []tool.Tool
	descriptors []llm.ToolDescriptor
	slot        string
	logger      *slog.Logger
}

func newAgentNode(spec config.AgentSpec, client llm.Client, registry *tool.Registry, logger *slog.Logger) *agentNode {
	role := spec.Role
	if role == "" {
		role = "Agent"
	}
	goal := spec.Goal
	if goal == "" {
		goal = "Process information"
	}

	bound := registry.ForAgent(spec.ID, spec.AllowedTools)
	descriptors := make([]llm.ToolDescriptor, 0, len(bound))
	for _, t := range bound {
		// Backends reject names outside the conservative pattern.
		// Substitution keeps the name unique and traceable.
		descriptors = append(descriptors, llm.ToolDescriptor{
			Name:        tool.SanitizeName(t.Name()),
			Description: t.Description(),
		})
	}

	return &agentNode{
		id:          spec.ID,
		class:       roleClass(spec.ID, spec.Role),
		role:        role,
		goal:        goal,
		knowledge:   spec.Knowledge,
		overrides:   spec.LLM,
		client:      client,
		tools:       bound,
		descriptors: descriptors,
		slot:        OutputSlot(spec.ID, spec.Role),
		logger:      logger.With("agent_id", spec.ID),
	}
}

func (a *agentNode) hasTools() bool {
	return len(a.tools) > 0
}

// execute runs one agent step and returns its partial state update.
// Failures are recorded in the delta, never returned.
func (a *agentNode) execute(ctx context.Context, state *SharedState) Delta {
	d := Delta{StepIncrement: 1}
	logger := nodeLogger(ctx, a.logger)

	task, err := a.determineTask(state)
	if err != nil {
		logger.Error("task determination failed", "error", err)
		d.ErrorMessage = err.Error()
		d.Messages = []Message{AIMessage("Error: " + err.Error())}
		return d
	}

	req := a.buildRequest(task, state)
	stop := observability.TimedOperation()
	resp, err := a.client.Complete(ctx, req)
	if err != nil {
		invErr := &InvocationError{AgentID: a.id, Err: err}
		logger.Error("model invocation failed", "error", err)
		d.ErrorMessage = invErr.Error()
		d.Messages = []Message{AIMessage(fmt.Sprintf("Error during LLM invocation: %v", err))}
		return d
	}
	observability.LogModelCall(logger, a.id, resp.Model, stop(), len(resp.ToolCalls))
	nodeMetrics(ctx).RecordModelTokens(ctx, resp.Model,
		int64(resp.Usage.InputTokens), int64(resp.Usage.OutputTokens))

	// Content maps to the role's slot only when the model answered
	// directly. Tool-call responses leave mapping to the round-trip:
	// control returns here after the dispatch node runs.
	if resp.Content != "" && len(resp.ToolCalls) == 0 {
		d.SlotName = a.slot
		d.SlotValue = resp.Content
	}
	d.Messages = []Message{AIMessageWithCalls(resp.Content, resp.ToolCalls)}
	return d
}

// determineTask derives the agent's task from its role and the current
// state. Standard roles have dependencies: the writer needs research
// findings, the editor needs a draft. A missing dependency is a local
// failure recorded in state, not a crash.
func (a *agentNode) determineTask(state *SharedState) (string, error) {
	switch a.class {
	case classResearcher:
		task := state.InitialTask
		if task == "" {
			task = "No initial task provided."
		}
		return fmt.Sprintf("Find relevant information for the initial task: '%s'. Use the retriever tool.", task), nil

	case classWriter:
		findings, ok := state.Slot(SlotResearchFindings)
		if !ok {
			return "", &TaskDeterminationError{AgentID: a.id, Reason: "missing " + SlotResearchFindings}
		}
		tone := a.knowledge.String("tone", "neutral")
		audience := a.knowledge.String("audience", "general")
		format := a.knowledge.String("format", "text")
		return fmt.Sprintf("Synthesize the following retrieved information into content in '%s' format, adopting a %s tone for a %s audience:\n\n%s",
			format, tone, audience, findings), nil

	case classEditor:
		draft, ok := state.Slot(SlotDraftContent)
		if !ok {
			return "", &TaskDeterminationError{AgentID: a.id, Reason: "missing " + SlotDraftContent}
		}
		guidelines := a.knowledge.String("guidelines", "standard editing guidelines")
		return fmt.Sprintf("Review and edit the following draft content according to these guidelines '%s':\n\n%s",
			guidelines, draft), nil

	default:
		a.logger.Warn("no task logic for agent role, using initial task")
		return state.InitialTask, nil
	}
}

// buildRequest composes the completion payload: a system message from
// role and goal, the entire prior history, and a human message carrying
// the task, the agent's knowledge, and the filtered state view.
func (a *agentNode) buildRequest(task string, state *SharedState) llm.CompletionRequest {
	goal := a.expandedGoal(state)

	messages := toBackend(state.History)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: a.promptText(task, goal, state),
	})

	req := llm.CompletionRequest{
		SystemPrompt: fmt.Sprintf("You are %s. Your goal is: %s.", a.role, goal),
		Messages:     messages,
		Tools:        a.descriptors,
	}
	if o := a.overrides; o != nil {
		req.Temperature = o.Temperature
		req.TopP = o.TopP
		req.MaxTokens = o.MaxTokens
		req.Stop = o.Stop
	}
	return req
}

// expandedGoal substitutes ${var} placeholders in the goal from the
// agent's knowledge and the run's initial task.
func (a *agentNode) expandedGoal(state *SharedState) string {
	vars := map[string]any{keyInitialTask: state.InitialTask}
	for k, v := range a.knowledge.Raw() {
		vars[k] = v
	}
	return template.Expand(a.goal, vars)
}

func (a *agentNode) promptText(task, goal string, state *SharedState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI Agent playing the role of: %s.\n", a.role)
	fmt.Fprintf(&b, "Your primary goal is: %s\n\n", goal)

	if a.knowledge.Len() > 0 {
		fmt.Fprintf(&b, "Your static knowledge/configuration:\n%s\n\n", indentJSON(a.knowledge.Raw()))
	}
	if view := state.contextView(); len(view) > 0 {
		fmt.Fprintf(&b, "Current workflow context:\n%s\n\n", indentJSON(view))
	}

	fmt.Fprintf(&b, "Your current task is:\n'''\n%s\n'''\n\n", task)
	b.WriteString("Perform this task based on your role, goal, knowledge, the provided context, and message history. " +
		"Use available tools ONLY if necessary to achieve your goal. Respond clearly with your result for the task.")
	return b.String()
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
