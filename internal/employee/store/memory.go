package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"onboard/internal/employee/models"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/requestcontext"
)

// InMemory keeps the development and test setup lightweight. It intentionally
// favors clarity over performance.
type InMemory struct {
	mu        sync.RWMutex
	nextID    int64
	employees map[int64]models.Employee
}

func NewInMemory() *InMemory {
	return &InMemory{employees: make(map[int64]models.Employee)}
}

func (s *InMemory) Create(ctx context.Context, emp *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	emp.ID = s.nextID
	if emp.Status == "" {
		emp.Status = models.StatusPending
	}
	emp.CreatedAt = requestcontext.Now(ctx)
	s.employees[emp.ID] = *emp
	return nil
}

func (s *InMemory) Get(_ context.Context, id int64) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if emp, ok := s.employees[id]; ok {
		return &emp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		e := emp
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *InMemory) FindByEmailAndStartDate(_ context.Context, email string, startDate time.Time) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, emp := range s.employees {
		if emp.Email == email && sameDate(emp.StartDate, startDate) {
			e := emp
			return &e, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, ok := s.employees[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	emp.Status = status
	emp.UpdatedAt = requestcontext.Now(ctx)
	s.employees[id] = emp
	return nil
}

func (s *InMemory) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.employees, id)
	return nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
