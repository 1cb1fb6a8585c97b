package lock

import (
	"context"
	"sync"

	"onboard/pkg/platform/sentinel"
)

// InMemory is the single-process locker used when redis is not configured.
type InMemory struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{held: make(map[int64]struct{})}
}

func (l *InMemory) Acquire(_ context.Context, employeeID int64) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[employeeID]; ok {
		return nil, sentinel.ErrConflict
	}
	l.held[employeeID] = struct{}{}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, employeeID)
	}, nil
}
