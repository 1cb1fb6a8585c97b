// Package pipeline runs the fixed onboarding step sequence and aggregates
// the per-step run log ids into the trace returned to the caller.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	employeestore "onboard/internal/employee/store"
	"onboard/internal/pipeline/step"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/sentinel"
)

// Orchestrator executes Validate, Provision, Notify in order. Scheduling is
// reached transitively through Provision. Steps always all run; there is no
// short-circuiting on warnings, and the only precondition is that the
// employee exists.
type Orchestrator struct {
	employees employeestore.Store
	steps     []step.Step
	tracer    trace.Tracer
	logger    *slog.Logger
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func New(employees employeestore.Store, validate, provision, notify step.Step, opts ...Option) (*Orchestrator, error) {
	if employees == nil {
		return nil, errors.New("employee store is required")
	}
	if validate == nil || provision == nil || notify == nil {
		return nil, errors.New("all steps are required")
	}
	o := &Orchestrator{
		employees: employees,
		steps:     []step.Step{validate, provision, notify},
		tracer:    otel.Tracer("onboard/pipeline"),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run executes the full sequence and returns the run log ids in call order.
// An unknown employee fails fast with a NotFound domain error before any
// step runs, so no run log entry is produced for that failure.
func (o *Orchestrator) Run(ctx context.Context, employeeID int64) ([]int64, error) {
	ctx, span := o.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.Int64("employee.id", employeeID)))
	defer span.End()

	if _, err := o.employees.Get(ctx, employeeID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			span.SetStatus(codes.Error, "employee not found")
			return nil, dErrors.New(dErrors.CodeNotFound, "employee not found")
		}
		span.RecordError(err)
		return nil, fmt.Errorf("check employee %d: %w", employeeID, err)
	}

	trail := make([]int64, 0, len(o.steps))
	for _, s := range o.steps {
		res, err := o.runStep(ctx, s, employeeID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, s.Name())
			return nil, fmt.Errorf("step %s: %w", s.Name(), err)
		}
		trail = append(trail, res.LogID)
	}

	o.logger.InfoContext(ctx, "pipeline completed",
		"employee_id", employeeID,
		"log_ids", trail,
	)
	return trail, nil
}

func (o *Orchestrator) runStep(ctx context.Context, s step.Step, employeeID int64) (step.Result, error) {
	ctx, span := o.tracer.Start(ctx, "pipeline.step",
		trace.WithAttributes(
			attribute.String("step.name", s.Name()),
			attribute.Int64("employee.id", employeeID),
		))
	defer span.End()
	return s.Execute(ctx, employeeID)
}
