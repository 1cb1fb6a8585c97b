// Package lock serializes pipeline runs per employee. Two concurrent runs
// for the same employee would race each step's check-then-create guard; the
// lock turns the second run into a Conflict instead.
package lock

import "context"

// Locker grants a per-employee run lease. Acquire returns
// sentinel.ErrConflict while another holder is active; the returned release
// func is safe to call exactly once.
type Locker interface {
	Acquire(ctx context.Context, employeeID int64) (release func(), err error)
}
