package store

import (
	"context"
	"sync"

	"onboard/internal/runlog"
	"onboard/pkg/requestcontext"
)

// InMemory keeps run log entries in insertion order per employee.
type InMemory struct {
	mu      sync.RWMutex
	nextID  int64
	entries []runlog.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(ctx context.Context, entry *runlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = s.nextID
	entry.CreatedAt = requestcontext.Now(ctx)
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *InMemory) ListByEmployee(_ context.Context, employeeID int64) ([]*runlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*runlog.Entry
	for i := range s.entries {
		if s.entries[i].EmployeeID == employeeID {
			e := s.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

func (s *InMemory) DeleteByEmployee(_ context.Context, employeeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.EmployeeID != employeeID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

// Count reports the total number of persisted entries. Test helper for the
// "zero entries on precondition failure" invariant.
func (s *InMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
