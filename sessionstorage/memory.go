package sessionstorage

import (
	"context"
	"sync"
)

// Memory is an in-process Store for tests and hosts that deliberately drop
// the session when the process exits, such as shared kiosk terminals.
type Memory struct {
	mu      sync.Mutex
	record  *Record
	pending string
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns a copy of the stored record, or nil when none is stored.
func (m *Memory) Load(_ context.Context) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.record.clone(), nil
}

// Save stores a copy of record.
func (m *Memory) Save(_ context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = record.clone()

	return nil
}

// Clear removes the record and the pending redirect path.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = nil
	m.pending = ""

	return nil
}

// SetPendingPath stores the destination to return to after sign-in.
func (m *Memory) SetPendingPath(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = path

	return nil
}

// ConsumePendingPath returns the stored destination and deletes it.
func (m *Memory) ConsumePendingPath(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := m.pending
	m.pending = ""

	return path, nil
}
