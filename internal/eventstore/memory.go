// Package eventstore keeps ingested request logs in process memory.
//
// Nothing is evicted: the store grows until Clear is called or the process
// exits.
package eventstore

import (
	"sync"

	"qa-metrics/internal/domain"
)

type MemoryStore struct {
	mu   sync.RWMutex
	logs []domain.RequestLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(rec domain.RequestLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, rec)
}

// AppendBatch appends recs in order under a single lock, so concurrent
// readers observe either none or all of the batch.
func (s *MemoryStore) AppendBatch(recs []domain.RequestLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, recs...)
}

// All returns a copy of the stored logs in insertion order.
func (s *MemoryStore) All() []domain.RequestLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RequestLog, len(s.logs))
	copy(out, s.logs)
	return out
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}
