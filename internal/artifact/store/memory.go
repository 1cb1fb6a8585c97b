package store

import (
	"context"
	"sync"

	"onboard/internal/artifact/models"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/requestcontext"
)

// In-memory artifact stores mirror the PostgreSQL uniqueness constraints so
// the idempotency guards behave identically in tests and development.

type InMemoryAccounts struct {
	mu        sync.RWMutex
	nextID    int64
	byEmp     map[int64]models.Account
	usernames map[string]int64
}

func NewInMemoryAccounts() *InMemoryAccounts {
	return &InMemoryAccounts{
		byEmp:     make(map[int64]models.Account),
		usernames: make(map[string]int64),
	}
}

func (s *InMemoryAccounts) Create(ctx context.Context, acc *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmp[acc.EmployeeID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.usernames[acc.Username]; ok {
		return ErrUsernameTaken
	}
	s.nextID++
	acc.ID = s.nextID
	acc.CreatedAt = requestcontext.Now(ctx)
	s.byEmp[acc.EmployeeID] = *acc
	s.usernames[acc.Username] = acc.EmployeeID
	return nil
}

func (s *InMemoryAccounts) FindByEmployee(_ context.Context, employeeID int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acc, ok := s.byEmp[employeeID]; ok {
		return &acc, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryAccounts) DeleteByEmployee(_ context.Context, employeeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.byEmp[employeeID]; ok {
		delete(s.usernames, acc.Username)
		delete(s.byEmp, employeeID)
	}
	return nil
}

type InMemoryEvents struct {
	mu     sync.RWMutex
	nextID int64
	byEmp  map[int64]models.OrientationEvent
}

func NewInMemoryEvents() *InMemoryEvents {
	return &InMemoryEvents{byEmp: make(map[int64]models.OrientationEvent)}
}

func (s *InMemoryEvents) Create(ctx context.Context, ev *models.OrientationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmp[ev.EmployeeID]; ok {
		return sentinel.ErrConflict
	}
	s.nextID++
	ev.ID = s.nextID
	ev.CreatedAt = requestcontext.Now(ctx)
	s.byEmp[ev.EmployeeID] = *ev
	return nil
}

func (s *InMemoryEvents) FindByEmployee(_ context.Context, employeeID int64) (*models.OrientationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ev, ok := s.byEmp[employeeID]; ok {
		return &ev, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryEvents) DeleteByEmployee(_ context.Context, employeeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byEmp, employeeID)
	return nil
}

type InMemoryNotifications struct {
	mu     sync.RWMutex
	nextID int64
	byEmp  map[int64][]models.Notification
}

func NewInMemoryNotifications() *InMemoryNotifications {
	return &InMemoryNotifications{byEmp: make(map[int64][]models.Notification)}
}

func (s *InMemoryNotifications) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n.ID = s.nextID
	n.CreatedAt = requestcontext.Now(ctx)
	s.byEmp[n.EmployeeID] = append(s.byEmp[n.EmployeeID], *n)
	return nil
}

func (s *InMemoryNotifications) ListByEmployee(_ context.Context, employeeID int64) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.byEmp[employeeID]
	out := make([]*models.Notification, 0, len(list))
	for i := range list {
		n := list[i]
		out = append(out, &n)
	}
	return out, nil
}

func (s *InMemoryNotifications) DeleteByEmployee(_ context.Context, employeeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byEmp, employeeID)
	return nil
}
