package checkpoint

import (
	"encoding/json"
	"time"
)

// Version is the current record format version.
// Increment when making breaking changes to the record structure.
const Version = 1

// Record is the persisted snapshot of a run after one node execution.
// It contains everything needed to inspect or resume the run.
type Record struct {
	// Metadata
	Version   int       `json:"version"`
	ThreadID  string    `json:"thread_id"`
	NodeID    string    `json:"node_id"`
	Step      int       `json:"step"`
	Timestamp time.Time `json:"timestamp"`

	// Execution state
	State    json.RawMessage `json:"state"`
	NextNode string          `json:"next_node,omitempty"`

	// PrevNodeID helps with debugging interrupted runs.
	PrevNodeID string `json:"prev_node_id,omitempty"`
}

// New creates a record for the given thread and step.
// State must already be JSON-serialized.
func New(threadID, nodeID string, step int, state []byte, nextNode string) *Record {
	return &Record{
		Version:   Version,
		ThreadID:  threadID,
		NodeID:    nodeID,
		Step:      step,
		Timestamp: time.Now().UTC(),
		State:     state,
		NextNode:  nextNode,
	}
}

// WithPrevNode sets the previous node id.
func (r *Record) WithPrevNode(prevNodeID string) *Record {
	r.PrevNodeID = prevNodeID
	return r
}

// Marshal serializes a record to JSON.
func (r *Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal deserializes a record from JSON.
func Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
