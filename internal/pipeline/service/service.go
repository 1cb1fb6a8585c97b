// Package service owns the run lifecycle around the orchestrator: the
// per-employee lock, the PENDING→RUNNING→COMPLETED/FAILED status
// transitions, and run log queries.
package service

import (
	"context"
	"errors"
	"log/slog"

	employeemodels "onboard/internal/employee/models"
	employeestore "onboard/internal/employee/store"
	"onboard/internal/pipeline/lock"
	"onboard/internal/platform/metrics"
	"onboard/internal/runlog"
	runlogstore "onboard/internal/runlog/store"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/sentinel"
)

// Runner abstracts the orchestrator for testing.
type Runner interface {
	Run(ctx context.Context, employeeID int64) ([]int64, error)
}

type Service struct {
	employees employeestore.Store
	logs      runlogstore.Store
	runner    Runner
	locker    lock.Locker
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(employees employeestore.Store, logs runlogstore.Store, runner Runner, locker lock.Locker, opts ...Option) (*Service, error) {
	if employees == nil {
		return nil, errors.New("employee store is required")
	}
	if logs == nil {
		return nil, errors.New("run log store is required")
	}
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	if locker == nil {
		return nil, errors.New("locker is required")
	}
	s := &Service{
		employees: employees,
		logs:      logs,
		runner:    runner,
		locker:    locker,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Execute runs the full pipeline for one employee, synchronously. A second
// call while one is in flight gets a Conflict. The employee status reflects
// the outcome; the returned trail is the ordered run log ids.
func (s *Service) Execute(ctx context.Context, employeeID int64) ([]int64, error) {
	if _, err := s.employees.Get(ctx, employeeID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "employee not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load employee")
	}

	release, err := s.locker.Acquire(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "onboarding already running for this employee")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "acquire run lock")
	}
	defer release()

	if err := s.employees.UpdateStatus(ctx, employeeID, employeemodels.StatusRunning); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mark running")
	}

	trail, err := s.runner.Run(ctx, employeeID)
	if err != nil {
		s.logger.ErrorContext(ctx, "pipeline run failed",
			"employee_id", employeeID,
			"error", err,
		)
		s.metrics.ObserveRun(string(employeemodels.StatusFailed))
		if serr := s.employees.UpdateStatus(ctx, employeeID, employeemodels.StatusFailed); serr != nil {
			s.logger.ErrorContext(ctx, "mark failed", "employee_id", employeeID, "error", serr)
		}
		var de *dErrors.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "pipeline run")
	}

	if err := s.employees.UpdateStatus(ctx, employeeID, employeemodels.StatusCompleted); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mark completed")
	}
	s.metrics.ObserveRun(string(employeemodels.StatusCompleted))
	return trail, nil
}

// Logs returns every run log entry for the employee, ordered by id.
func (s *Service) Logs(ctx context.Context, employeeID int64) ([]*runlog.Entry, error) {
	entries, err := s.logs.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list run logs")
	}
	return entries, nil
}
