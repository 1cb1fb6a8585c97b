package store

import (
	"context"

	"onboard/internal/runlog"
)

// Store is the append-only persistence for run log entries. Entries are never
// updated or individually deleted; DeleteByEmployee exists only for the
// administrative employee-deletion cascade.
type Store interface {
	// Append persists the entry and assigns its monotonic ID.
	Append(ctx context.Context, entry *runlog.Entry) error
	// ListByEmployee returns entries for one employee ordered by creation.
	ListByEmployee(ctx context.Context, employeeID int64) ([]*runlog.Entry, error)
	DeleteByEmployee(ctx context.Context, employeeID int64) error
}
