package tool

import (
	"log/slog"
	"sync"
)

// Registry resolves declared tool identifiers to Tool instances.
//
// Tools are registered under an identifier (the id used in agent specs)
// and additionally indexed by their sanitized name (the identifier model
// backends use in tool calls). Registry is safe for concurrent use and
// is treated as read-only once graph building starts.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]Tool
	byName map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]Tool),
		byName: make(map[string]Tool),
	}
}

// Register adds a tool under the given identifier.
// A tool whose name does not conform to the allowed pattern is indexed
// under its sanitized name; registering the same id twice overwrites.
func (r *Registry) Register(id string, t Tool) {
	name := t.Name()
	if !ValidName(name) {
		sanitized := SanitizeName(name)
		slog.Warn("tool name contains invalid characters, sanitizing",
			"tool_id", id, "name", name, "sanitized", sanitized)
		name = sanitized
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = t
	r.byName[name] = t
}

// RegisterMany adds multiple tools keyed by identifier.
func (r *Registry) RegisterMany(tools map[string]Tool) {
	for id, t := range tools {
		r.Register(id, t)
	}
}

// Get returns the tool registered under id.
func (r *Registry) Get(id string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	return t, ok
}

// Resolve returns the tool whose (sanitized) name matches a tool call.
func (r *Registry) Resolve(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[SanitizeName(name)]
	return t, ok
}

// ForAgent returns the tools for a set of allowed identifiers, in the
// given order. Unknown identifiers are skipped with a warning; the agent
// simply has fewer tools bound.
func (r *Registry) ForAgent(agentID string, allowed []string) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(allowed))
	for _, id := range allowed {
		t, ok := r.byID[id]
		if !ok {
			slog.Warn("agent requires unavailable tool",
				"agent_id", agentID, "tool_id", id)
			continue
		}
		tools = append(tools, t)
	}
	return tools
}

// Descriptors returns the advertised form of the given tools, with
// sanitized names.
func Descriptors(tools []Tool) []Descriptor {
	descs := make([]Descriptor, 0, len(tools))
	for _, t := range tools {
		descs = append(descs, Descriptor{
			Name:        SanitizeName(t.Name()),
			Description: t.Description(),
		})
	}
	return descs
}

// IDs returns all registered identifiers. The order is not guaranteed.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
