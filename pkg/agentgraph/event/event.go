// Package event carries run lifecycle notifications.
//
// The runner publishes an Event at every significant point of a run:
// run start and end, each node step, each tool call, each checkpoint
// save. Subscribers receive them on a LocalBus for progress display,
// audit logging, or external forwarding.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event kinds published by the runner.
const (
	KindRunStarted      = "run.started"
	KindRunCompleted    = "run.completed"
	KindRunFailed       = "run.failed"
	KindNodeStarted     = "node.started"
	KindNodeCompleted   = "node.completed"
	KindToolCalled      = "tool.called"
	KindCheckpointSaved = "checkpoint.saved"
)

// Event is a single run lifecycle notification.
// Events are immutable once created.
type Event struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// Kind is one of the Kind* constants.
	Kind string `json:"kind"`

	// ThreadID identifies the run the event belongs to.
	ThreadID string `json:"thread_id"`

	// NodeID is set for node and tool scoped events.
	NodeID string `json:"node_id,omitempty"`

	// Step is the run's step counter at emission time.
	Step int `json:"step"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Fields carries kind-specific details (tool name, error text, ...).
	Fields map[string]any `json:"fields,omitempty"`
}

// New creates an event for the given kind and run.
func New(kind, threadID string) Event {
	return Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		ThreadID:  threadID,
		Timestamp: time.Now(),
	}
}

// WithNode returns a copy of the event scoped to a node.
func (e Event) WithNode(nodeID string) Event {
	e.NodeID = nodeID
	return e
}

// WithStep returns a copy of the event carrying the step counter.
func (e Event) WithStep(step int) Event {
	e.Step = step
	return e
}

// WithField returns a copy of the event with one detail field added.
func (e Event) WithField(key string, value any) Event {
	fields := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[key] = value
	e.Fields = fields
	return e
}

// Handler processes a published event.
type Handler func(ctx context.Context, evt Event)
