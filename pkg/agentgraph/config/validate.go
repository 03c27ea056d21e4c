package config

import (
	"errors"
	"fmt"
	"log/slog"
)

// Sentinel errors for workflow document validation.
var (
	// ErrNoAgents indicates the document declares no agents.
	ErrNoAgents = errors.New("no agents declared")

	// ErrAgentIDEmpty indicates an agent is missing its id.
	ErrAgentIDEmpty = errors.New("agent id is empty")

	// ErrDuplicateAgent indicates two agents share the same id.
	ErrDuplicateAgent = errors.New("duplicate agent id")

	// ErrAgentNotFound indicates the layout references an undeclared agent.
	ErrAgentNotFound = errors.New("agent not found")
)

// DocumentError wraps a validation error with the offending item.
type DocumentError struct {
	// Item identifies what failed ("agent 'writer'", "edge researcher->x").
	Item string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Item, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Validate checks the workflow document for declaration-level problems.
// Multiple errors are joined together. Layout problems that the engine
// tolerates (unknown finish points, duplicate edge sources) are logged
// as warnings, not returned.
//
// Graph-structural validation (entry point, edge endpoints) happens at
// build time; Validate only catches what can be judged from the
// document alone.
func (w *Workflow) Validate() error {
	var errs []error

	if len(w.Agents) == 0 {
		errs = append(errs, ErrNoAgents)
	}

	seen := make(map[string]bool, len(w.Agents))
	for i, a := range w.Agents {
		if a.ID == "" {
			errs = append(errs, &DocumentError{
				Item: fmt.Sprintf("agent at index %d", i),
				Err:  ErrAgentIDEmpty,
			})
			continue
		}
		if seen[a.ID] {
			errs = append(errs, &DocumentError{
				Item: fmt.Sprintf("agent %q", a.ID),
				Err:  ErrDuplicateAgent,
			})
		}
		seen[a.ID] = true
	}

	for _, id := range w.Orchestrator.Nodes {
		if !seen[id] {
			errs = append(errs, &DocumentError{
				Item: fmt.Sprintf("node %q", id),
				Err:  ErrAgentNotFound,
			})
		}
	}

	// Advisory only. Finish points do not gate termination.
	nodes := make(map[string]bool, len(w.Orchestrator.Nodes))
	for _, id := range w.Orchestrator.Nodes {
		nodes[id] = true
	}
	for _, fp := range w.Orchestrator.FinishPoints {
		if !nodes[fp] {
			slog.Warn("finish point is not a declared node", "node_id", fp)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Agent returns the agent spec with the given id, or nil.
func (w *Workflow) Agent(id string) *AgentSpec {
	for i := range w.Agents {
		if w.Agents[i].ID == id {
			return &w.Agents[i]
		}
	}
	return nil
}
