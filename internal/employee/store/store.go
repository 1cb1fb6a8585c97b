package store

import (
	"context"
	"time"

	"onboard/internal/employee/models"
)

// Store is interface-driven so the pipeline and services can run against
// in-memory or PostgreSQL persistence without rewiring business code.
// Implementations return pkg/platform/sentinel errors for infrastructure facts.
type Store interface {
	// Create persists a new employee and assigns its ID.
	Create(ctx context.Context, emp *models.Employee) error
	// Get returns the employee or sentinel.ErrNotFound.
	Get(ctx context.Context, id int64) (*models.Employee, error)
	// List returns all employees, newest first.
	List(ctx context.Context) ([]*models.Employee, error)
	// FindByEmailAndStartDate supports CSV import duplicate detection.
	// Returns sentinel.ErrNotFound when no match exists.
	FindByEmailAndStartDate(ctx context.Context, email string, startDate time.Time) (*models.Employee, error)
	// UpdateStatus transitions the onboarding lifecycle status.
	UpdateStatus(ctx context.Context, id int64, status models.Status) error
	// Delete removes the employee record.
	Delete(ctx context.Context, id int64) error
}
