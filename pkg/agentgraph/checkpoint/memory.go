package checkpoint

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory store, sufficient for single-process runs
// and tests. Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[int]storedRecord // threadID -> step -> record
	closed bool
}

// storedRecord holds record data with metadata for List().
type storedRecord struct {
	data      []byte
	timestamp time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[int]storedRecord),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(threadID string, step int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.data[threadID] == nil {
		m.data[threadID] = make(map[int]storedRecord)
	}

	// Copy data to avoid retaining the caller's slice
	stored := make([]byte, len(data))
	copy(stored, data)

	m.data[threadID][step] = storedRecord{
		data:      stored,
		timestamp: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(threadID string, step int) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	thread, ok := m.data[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	rec, ok := thread[step]
	if !ok {
		return nil, ErrNotFound
	}

	result := make([]byte, len(rec.data))
	copy(result, rec.data)
	return result, nil
}

// Latest implements Store.
func (m *MemoryStore) Latest(threadID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	thread, ok := m.data[threadID]
	if !ok || len(thread) == 0 {
		return nil, ErrNotFound
	}

	maxStep := -1
	for step := range thread {
		if step > maxStep {
			maxStep = step
		}
	}

	rec := thread[maxStep]
	result := make([]byte, len(rec.data))
	copy(result, rec.data)
	return result, nil
}

// List implements Store.
func (m *MemoryStore) List(threadID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	thread, ok := m.data[threadID]
	if !ok {
		return nil, nil
	}

	infos := make([]Info, 0, len(thread))
	for step, rec := range thread {
		infos = append(infos, Info{
			ThreadID:  threadID,
			Step:      step,
			Timestamp: rec.timestamp,
			Size:      int64(len(rec.data)),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Step < infos[j].Step
	})
	return infos, nil
}

// DeleteThread implements Store.
func (m *MemoryStore) DeleteThread(threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, threadID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the total number of records across all threads.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, thread := range m.data {
		count += len(thread)
	}
	return count
}
