// Package tool defines the external capability boundary for agentgraph.
//
// A Tool is a named operation an agent may request through a tool call.
// The Registry resolves declared tool identifiers to Tool instances and
// enforces the conservative name pattern required by model backends.
package tool

import (
	"context"
	"encoding/json"
)

// Tool is an executable capability.
// Implementations must be safe for concurrent use.
type Tool interface {
	// Name returns the identifier the model uses to request this tool.
	Name() string

	// Description explains to the model what the tool does.
	Description() string

	// Execute runs the tool with the raw JSON arguments from a tool call.
	// The returned string is the payload of the resulting tool message.
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Descriptor is the advertised form of a tool, sent to model backends.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Func adapts a plain function into a Tool.
type Func struct {
	ToolName        string
	ToolDescription string
	Fn              func(ctx context.Context, args json.RawMessage) (string, error)
}

// Name implements Tool.
func (f *Func) Name() string { return f.ToolName }

// Description implements Tool.
func (f *Func) Description() string { return f.ToolDescription }

// Execute implements Tool.
func (f *Func) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	return f.Fn(ctx, args)
}

// New wraps fn as a Tool with the given name and description.
// The name is sanitized to the allowed pattern.
func New(name, description string, fn func(ctx context.Context, args json.RawMessage) (string, error)) Tool {
	return &Func{
		ToolName:        SanitizeName(name),
		ToolDescription: description,
		Fn:              fn,
	}
}
