// Package step implements the pipeline's idempotent units of work.
//
// Every step follows the same execution shape: build a fresh trace recorder,
// load the employee, perform an idempotent action guarded by an artifact
// lookup, and persist exactly one run log entry, on success and on handled
// failure alike. Side effects are observable only through the derived
// artifact, the run log entry, and the returned output.
package step

import (
	"context"
	"log/slog"

	employeestore "onboard/internal/employee/store"
	"onboard/internal/platform/metrics"
	"onboard/internal/runlog"
	runlogstore "onboard/internal/runlog/store"
)

// Step is the single contract all pipeline steps implement. No runtime
// capability probing: the orchestrator calls Execute and nothing else.
type Step interface {
	Name() string
	Execute(ctx context.Context, employeeID int64) (Result, error)
}

// Result carries the persisted run log ID plus step-specific output.
type Result struct {
	LogID  int64
	Output map[string]any
}

// base bundles the collaborators every step shares and the run-log
// persistence path, so each step variant stays focused on its action.
type base struct {
	name      string
	employees employeestore.Store
	logs      runlogstore.Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func newBase(name string, employees employeestore.Store, logs runlogstore.Store) base {
	return base{
		name:      name,
		employees: employees,
		logs:      logs,
		logger:    slog.New(slog.DiscardHandler),
	}
}

func (b *base) Name() string { return b.name }

// persist writes the single run log entry for one execution and reports the
// outcome to metrics. The recorder's observations are captured as-is, in
// insertion order.
func (b *base) persist(
	ctx context.Context,
	employeeID int64,
	input map[string]any,
	rec *runlog.Recorder,
	output map[string]any,
	status runlog.EntryStatus,
) (int64, error) {
	entry := &runlog.Entry{
		EmployeeID:   employeeID,
		Step:         b.name,
		Input:        input,
		Observations: rec.Observations(),
		Output:       output,
		Status:       status,
	}
	if err := b.logs.Append(ctx, entry); err != nil {
		return 0, err
	}
	b.metrics.ObserveStep(b.name, string(status))
	b.logger.InfoContext(ctx, "step executed",
		"step", b.name,
		"employee_id", employeeID,
		"log_id", entry.ID,
		"status", status,
	)
	return entry.ID, nil
}

// Option configures the shared step collaborators.
type Option func(*base)

func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) {
		b.metrics = m
	}
}
