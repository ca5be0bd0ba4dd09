package history

import (
	"context"
	"sync"
)

// MockRepository is an in-memory Repository for testing.
type MockRepository struct {
	mu      sync.RWMutex
	records []Record
	nextID  int64
}

// NewMockRepository creates an empty mock repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{nextID: 1}
}

// Save stores one download record.
func (m *MockRepository) Save(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = m.nextID
	m.nextID++
	m.records = append(m.records, rec)
	return nil
}

// ListByRun retrieves all records for a run, oldest first.
func (m *MockRepository) ListByRun(ctx context.Context, runID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for _, rec := range m.records {
		if rec.RunID == runID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// All returns every stored record, for test assertions.
func (m *MockRepository) All() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Close is a no-op.
func (m *MockRepository) Close() error {
	return nil
}
