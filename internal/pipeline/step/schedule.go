package step

import (
	"context"
	"errors"
	"fmt"

	"onboard/internal/assistant"
	artifactmodels "onboard/internal/artifact/models"
	artifactstore "onboard/internal/artifact/store"
	employeemodels "onboard/internal/employee/models"
	employeestore "onboard/internal/employee/store"
	"onboard/internal/runlog"
	runlogstore "onboard/internal/runlog/store"
	"onboard/pkg/platform/sentinel"
)

const (
	defaultTimeZone    = "Asia/Bangkok"
	defaultLocation    = "HQ – Room A"
	defaultDescription = "Welcome & IT setup"
)

// ScheduleConfig carries the deployment-level scheduling defaults.
type ScheduleConfig struct {
	TimeZone string
	Location string
	Simulate bool
}

// Schedule books the day-1 orientation slot, guarded by the one-event-per-
// employee invariant. The assistant may propose the window; a fixed
// 10:00-11:00 slot on the start date is the deterministic fallback.
type Schedule struct {
	base
	events    artifactstore.EventStore
	assistant assistant.Assistant
	cfg       ScheduleConfig
}

func NewSchedule(employees employeestore.Store, events artifactstore.EventStore, logs runlogstore.Store, assist assistant.Assistant, cfg ScheduleConfig, opts ...Option) (*Schedule, error) {
	if employees == nil {
		return nil, errors.New("employee store is required")
	}
	if events == nil {
		return nil, errors.New("event store is required")
	}
	if logs == nil {
		return nil, errors.New("run log store is required")
	}
	if assist == nil {
		return nil, errors.New("assistant is required")
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = defaultTimeZone
	}
	if cfg.Location == "" {
		cfg.Location = defaultLocation
	}
	s := &Schedule{
		base:      newBase("Schedule", employees, logs),
		events:    events,
		assistant: assist,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(&s.base)
	}
	return s, nil
}

func (s *Schedule) Execute(ctx context.Context, employeeID int64) (Result, error) {
	rec := runlog.NewRecorder()
	input := map[string]any{"employee_id": employeeID}

	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return Result{}, fmt.Errorf("load employee %d: %w", employeeID, err)
	}
	rec.Record("loaded employee", map[string]any{
		"id":         emp.ID,
		"start_date": emp.StartDate.Format("2006-01-02"),
	})

	ev, err := s.events.FindByEmployee(ctx, employeeID)
	switch {
	case err == nil:
		rec.Record("orientation event already exists", map[string]any{"artifact_id": ev.ID})
	case errors.Is(err, sentinel.ErrNotFound):
		ev, err = s.create(ctx, emp, rec)
		if err != nil {
			return Result{}, err
		}
	default:
		return Result{}, fmt.Errorf("find orientation event: %w", err)
	}

	output := map[string]any{"artifact_id": ev.ID, "event": ev.Event}
	logID, err := s.persist(ctx, employeeID, input, rec, output, runlog.StatusOK)
	if err != nil {
		return Result{}, err
	}
	return Result{LogID: logID, Output: output}, nil
}

func (s *Schedule) create(ctx context.Context, emp *employeemodels.Employee, rec *runlog.Recorder) (*artifactmodels.OrientationEvent, error) {
	payload := s.buildPayload(ctx, emp, rec)
	ev := &artifactmodels.OrientationEvent{EmployeeID: emp.ID, Event: payload}
	err := s.events.Create(ctx, ev)
	switch {
	case err == nil:
		rec.Record("orientation event created", payload)
		return ev, nil
	case errors.Is(err, sentinel.ErrConflict):
		// Lost a check-then-create race with a concurrent run. The existing
		// event wins; reuse is idempotent success.
		existing, ferr := s.events.FindByEmployee(ctx, emp.ID)
		if ferr != nil {
			return nil, fmt.Errorf("reread orientation event: %w", ferr)
		}
		rec.Record("orientation event already exists", map[string]any{"artifact_id": existing.ID})
		return existing, nil
	default:
		return nil, fmt.Errorf("create orientation event: %w", err)
	}
}

func (s *Schedule) buildPayload(ctx context.Context, emp *employeemodels.Employee, rec *runlog.Recorder) artifactmodels.EventPayload {
	startDate := emp.StartDate.Format("2006-01-02")

	payload := artifactmodels.EventPayload{
		Summary:     fmt.Sprintf("Day-1 Orientation: %s", emp.Name),
		Start:       artifactmodels.EventTime{DateTime: startDate + "T10:00:00", TimeZone: s.cfg.TimeZone},
		End:         artifactmodels.EventTime{DateTime: startDate + "T11:00:00", TimeZone: s.cfg.TimeZone},
		Attendees:   []artifactmodels.EventAttendee{{Email: emp.Email}},
		Location:    s.cfg.Location,
		Description: defaultDescription,
		Status:      "confirmed",
		Simulate:    s.cfg.Simulate,
	}

	if !s.assistant.Configured() {
		return payload
	}
	proposal, ok := s.assistant.ProposeMeeting(ctx, assistant.MeetingRequest{
		Name:      emp.Name,
		Email:     emp.Email,
		StartDate: startDate,
		Role:      emp.Role,
		TimeZone:  s.cfg.TimeZone,
	})
	if !ok {
		return payload
	}

	payload.Start = artifactmodels.EventTime{DateTime: proposal.StartDateTime, TimeZone: proposal.StartTimeZone}
	payload.End = artifactmodels.EventTime{DateTime: proposal.EndDateTime, TimeZone: proposal.EndTimeZone}
	if payload.Start.TimeZone == "" {
		payload.Start.TimeZone = s.cfg.TimeZone
	}
	if payload.End.TimeZone == "" {
		payload.End.TimeZone = s.cfg.TimeZone
	}
	if proposal.Location != "" {
		payload.Location = proposal.Location
	}
	if proposal.Description != "" {
		payload.Description = proposal.Description
	}
	rec.Record("assistant-proposed event", map[string]any{
		"start":    payload.Start,
		"end":      payload.End,
		"location": payload.Location,
	})
	return payload
}
