package step

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"onboard/internal/assistant"
	employeestore "onboard/internal/employee/store"
	"onboard/internal/runlog"
	runlogstore "onboard/internal/runlog/store"
	"onboard/pkg/email"
)

// Validate runs deterministic rule checks over the employee record and
// consults the assistant for advisory normalization. It produces no artifact
// and never finishes with an ERROR entry: rule violations are WARN.
type Validate struct {
	base
	assistant assistant.Assistant
}

func NewValidate(employees employeestore.Store, logs runlogstore.Store, assist assistant.Assistant, opts ...Option) (*Validate, error) {
	if employees == nil {
		return nil, errors.New("employee store is required")
	}
	if logs == nil {
		return nil, errors.New("run log store is required")
	}
	if assist == nil {
		return nil, errors.New("assistant is required")
	}
	s := &Validate{
		base:      newBase("Validate", employees, logs),
		assistant: assist,
	}
	for _, opt := range opts {
		opt(&s.base)
	}
	return s, nil
}

func (s *Validate) Execute(ctx context.Context, employeeID int64) (Result, error) {
	rec := runlog.NewRecorder()

	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return Result{}, fmt.Errorf("load employee %d: %w", employeeID, err)
	}

	input := map[string]any{
		"name":       emp.Name,
		"email":      emp.Email,
		"role":       emp.Role,
		"department": emp.Department,
		"start_date": emp.StartDate.Format("2006-01-02"),
	}
	rec.Record("loaded employee", input)

	// Check order is part of the contract: contact, name, role. Insertion
	// order, no dedup.
	violations := []string{}
	if !email.Valid(emp.Email) {
		violations = append(violations, "invalid contact format")
	}
	if len(strings.TrimSpace(emp.Name)) < 2 {
		violations = append(violations, "name too short")
	}
	if emp.Role == "" {
		violations = append(violations, "role required")
	}
	rec.Record("rule checks completed", map[string]any{"errors": violations})

	norm := s.assistant.Normalize(ctx, assistant.Snapshot{
		"name":       emp.Name,
		"email":      email.Redact(emp.Email),
		"role":       emp.Role,
		"department": emp.Department,
		"start_date": emp.StartDate.Format("2006-01-02"),
	})
	rec.Record("assistant normalization", norm)

	status := runlog.StatusOK
	if len(violations) > 0 {
		status = runlog.StatusWarn
	}
	rec.Record("validation completed", map[string]any{"status": string(status)})

	output := map[string]any{"errors": violations, "llm": norm}
	logID, err := s.persist(ctx, employeeID, input, rec, output, status)
	if err != nil {
		return Result{}, err
	}
	return Result{LogID: logID, Output: output}, nil
}
