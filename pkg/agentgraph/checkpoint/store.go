// Package checkpoint provides per-thread run-record storage for resumability.
//
// The run controller appends one record per completed node execution,
// keyed by thread id and step number. Stores must support reading back
// the latest record for a thread so an interrupted run can be inspected
// or resumed within the process lifetime.
package checkpoint

import (
	"errors"
	"time"
)

// Store persists run records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a record for a thread at a specific step.
	// Overwrites if a record for (threadID, step) already exists.
	Save(threadID string, step int, data []byte) error

	// Load retrieves the record for (threadID, step).
	// Returns ErrNotFound if it doesn't exist.
	Load(threadID string, step int) ([]byte, error)

	// Latest retrieves the record with the highest step for a thread.
	// Returns ErrNotFound if the thread has no records.
	Latest(threadID string) ([]byte, error)

	// List returns record metadata for a thread, ordered by step.
	// Returns an empty slice (not an error) if the thread has no records.
	List(threadID string) ([]Info, error)

	// DeleteThread removes all records for a thread.
	// Returns nil if the thread has no records.
	DeleteThread(threadID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides record metadata without loading full state.
type Info struct {
	ThreadID  string
	Step      int
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for checkpoint operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
