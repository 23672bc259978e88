package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record // workflow ID -> records in insertion order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]Record)}
}

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.records[rec.WorkflowID]
	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = rec
			return nil
		}
	}
	s.records[rec.WorkflowID] = append(recs, rec)
	return nil
}

func (s *MemoryStore) List(_ context.Context, workflowID string) ([]Record, error) {
	s.mu.RLock()
	recs := append([]Record(nil), s.records[workflowID]...)
	s.mu.RUnlock()

	// Later inserts win ties so that equal start times still list newest first.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].StartedAt.After(recs[j].StartedAt)
	})
	return recs, nil
}

func (s *MemoryStore) Close() error { return nil }
