package agentgraph

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/config"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

// END is the terminal transition target. A node whose static successor
// is END finishes the run.
const END = "__end__"

// Builder turns a validated workflow document into a runnable Workflow.
//
// Builder is not safe for concurrent use. Build may be called once;
// a new dynamic configuration gets a fresh Builder, never a mutation
// of a graph already in use.
type Builder struct {
	doc      *config.Workflow
	registry *tool.Registry
	client   llm.Client
	logger   *slog.Logger
}

// NewBuilder creates a builder over the given document, tool registry,
// and model client.
//
// Panics if doc, registry, or client is nil; these are programming
// errors, not configuration errors.
func NewBuilder(doc *config.Workflow, registry *tool.Registry, client llm.Client) *Builder {
	if doc == nil {
		panic("agentgraph: workflow document cannot be nil")
	}
	if registry == nil {
		panic("agentgraph: tool registry cannot be nil")
	}
	if client == nil {
		panic("agentgraph: model client cannot be nil")
	}
	return &Builder{
		doc:      doc,
		registry: registry,
		client:   client,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger used during build and inherited by nodes.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Build validates the document and graph structure and produces an
// immutable Workflow. All violations are collected and joined; no
// partial graph is ever returned alongside an error.
//
// Structural rules, checked after document validation:
//  1. The entry point must be set and must be a declared node.
//  2. Every edge endpoint must be a declared node.
//  3. At most one outgoing edge per source is honored. Later edges
//     from the same source are ignored with a warning, first wins.
func (b *Builder) Build() (*Workflow, error) {
	var errs []error

	if err := b.doc.Validate(); err != nil {
		errs = append(errs, err)
	}

	orch := b.doc.Orchestrator
	declared := make(map[string]bool, len(orch.Nodes))
	for _, id := range orch.Nodes {
		// The dispatch node id is the engine's own; an agent declared
		// under it would be shadowed whenever any agent has tools.
		if id == dispatchNodeID {
			errs = append(errs, &ConfigError{Item: id, Err: ErrReservedNodeID})
			continue
		}
		declared[id] = true
	}

	if orch.EntryPoint == "" {
		errs = append(errs, ErrNoEntryPoint)
	} else if !declared[orch.EntryPoint] {
		errs = append(errs, &ConfigError{Item: orch.EntryPoint, Err: ErrEntryNotFound})
	}

	next := make(map[string]string, len(orch.Nodes))
	for _, edge := range orch.Edges {
		if !declared[edge.Source] {
			errs = append(errs, &ConfigError{
				Item: fmt.Sprintf("edge source %q", edge.Source),
				Err:  ErrNodeNotFound,
			})
			continue
		}
		if !declared[edge.Target] {
			errs = append(errs, &ConfigError{
				Item: fmt.Sprintf("edge target %q", edge.Target),
				Err:  ErrNodeNotFound,
			})
			continue
		}
		if prev, exists := next[edge.Source]; exists {
			b.logger.Warn("duplicate edge source ignored, first-declared wins",
				"source", edge.Source,
				"kept_target", prev,
				"ignored_target", edge.Target)
			continue
		}
		next[edge.Source] = edge.Target
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	agents := make(map[string]*agentNode, len(orch.Nodes))
	anyTools := false
	for _, id := range orch.Nodes {
		spec := b.doc.Agent(id)
		node := newAgentNode(*spec, b.client, b.registry, b.logger)
		agents[id] = node
		if node.hasTools() {
			anyTools = true
		}
		if _, ok := next[id]; !ok {
			next[id] = END
		}
	}

	// One dispatch node serves every agent. It exists only when some
	// agent resolved at least one tool; an agent with no bound tools
	// can never route to it.
	var dispatch *dispatchNode
	if anyTools {
		dispatch = newDispatchNode(b.registry, b.logger)
	}

	return &Workflow{
		entryPoint: orch.EntryPoint,
		agents:     agents,
		next:       next,
		dispatch:   dispatch,
		slotNames:  seedSlots(b.doc, orch.Nodes),
	}, nil
}

// seedSlots lists the content slots a fresh run declares: the three
// standard role slots plus each agent's own output slot.
func seedSlots(doc *config.Workflow, nodeIDs []string) []string {
	seen := map[string]bool{
		SlotResearchFindings: true,
		SlotDraftContent:     true,
		SlotFinalContent:     true,
	}
	slots := []string{SlotResearchFindings, SlotDraftContent, SlotFinalContent}
	for _, id := range nodeIDs {
		spec := doc.Agent(id)
		slot := OutputSlot(id, spec.Role)
		if !seen[slot] {
			seen[slot] = true
			slots = append(slots, slot)
		}
	}
	return slots
}

// Workflow is a compiled, immutable workflow graph. Safe for
// concurrent use: many runs may execute over one Workflow.
type Workflow struct {
	entryPoint string
	agents     map[string]*agentNode
	next       map[string]string
	dispatch   *dispatchNode
	slotNames  []string
}

// EntryPoint returns the node id where every run starts.
func (w *Workflow) EntryPoint() string {
	return w.entryPoint
}

// NodeIDs returns the agent node ids in the graph.
func (w *Workflow) NodeIDs() []string {
	ids := make([]string, 0, len(w.agents))
	for id := range w.agents {
		ids = append(ids, id)
	}
	return ids
}

// HasDispatch reports whether the graph contains the tool dispatch node.
func (w *Workflow) HasDispatch() bool {
	return w.dispatch != nil
}

// successor returns an agent's static transition target, or END.
func (w *Workflow) successor(nodeID string) string {
	if target, ok := w.next[nodeID]; ok {
		return target
	}
	return END
}
