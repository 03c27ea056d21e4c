package agentgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Builder.Build. Multiple violations are
// joined, so match with errors.Is.
var (
	// ErrNoEntryPoint indicates the orchestrator layout has no entry point.
	ErrNoEntryPoint = errors.New("agentgraph: entry point not set")

	// ErrEntryNotFound indicates the entry point is not a declared node.
	ErrEntryNotFound = errors.New("agentgraph: entry point not found")

	// ErrNodeNotFound indicates an edge endpoint is not a declared node.
	ErrNodeNotFound = errors.New("agentgraph: node not found")

	// ErrReservedNodeID indicates a declared node uses an id the engine
	// reserves for itself (the tool dispatch node).
	ErrReservedNodeID = errors.New("agentgraph: node id is reserved")
)

// ConfigError reports one build-time validation failure with the
// offending item. Build never returns a partial graph alongside one.
type ConfigError struct {
	Item string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Item)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TaskDeterminationError indicates an agent could not compute its task
// from the current state. It is recorded in the state, never returned
// across the Runner boundary.
type TaskDeterminationError struct {
	AgentID string
	Reason  string
}

func (e *TaskDeterminationError) Error() string {
	return fmt.Sprintf("Task determination failed for %s", e.AgentID)
}

// InvocationError indicates a model call failed. Like task
// determination failures it is converted to a state delta.
type InvocationError struct {
	AgentID string
	Err     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("LLM invocation failed for %s: %v", e.AgentID, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// ToolResolutionError indicates a requested tool name is unknown to the
// registry. It becomes the payload of a tool message, never an abort.
type ToolResolutionError struct {
	Name string
}

func (e *ToolResolutionError) Error() string {
	return fmt.Sprintf("tool %q is not available", e.Name)
}
