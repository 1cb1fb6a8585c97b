package store

import (
	"context"
	"errors"

	"onboard/internal/artifact/models"
)

// ErrUsernameTaken signals a global username uniqueness conflict during
// account creation. Distinct from sentinel.ErrConflict (which means an
// artifact for the employee already exists) so the provision step can retry
// with a fresh suffix instead of reusing.
var ErrUsernameTaken = errors.New("username taken")

// AccountStore enforces at most one account per employee. Create returns
// sentinel.ErrConflict when the employee already has an account, and
// ErrUsernameTaken on a username collision with another employee.
type AccountStore interface {
	Create(ctx context.Context, acc *models.Account) error
	FindByEmployee(ctx context.Context, employeeID int64) (*models.Account, error)
	DeleteByEmployee(ctx context.Context, employeeID int64) error
}

// EventStore enforces at most one orientation event per employee. Create
// returns sentinel.ErrConflict when one already exists.
type EventStore interface {
	Create(ctx context.Context, ev *models.OrientationEvent) error
	FindByEmployee(ctx context.Context, employeeID int64) (*models.OrientationEvent, error)
	DeleteByEmployee(ctx context.Context, employeeID int64) error
}

// NotificationStore keeps every dispatched notification; re-running the
// notify step appends rather than replaces.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByEmployee(ctx context.Context, employeeID int64) ([]*models.Notification, error)
	DeleteByEmployee(ctx context.Context, employeeID int64) error
}
