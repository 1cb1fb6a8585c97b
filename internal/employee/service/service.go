// Package service implements employee record management: creation, listing,
// deletion with cascade, and bulk CSV import.
package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	artifactstore "onboard/internal/artifact/store"
	"onboard/internal/employee/models"
	"onboard/internal/employee/store"
	"onboard/internal/platform/metrics"
	runlogstore "onboard/internal/runlog/store"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/email"
	"onboard/pkg/platform/sentinel"
)

// Per-line import errors reported back to the caller are capped; the counts
// in the summary stay exact.
const maxErrorRows = 50

var dateFormats = []string{"2006-01-02", "02/01/2006", "01/02/2006"}

// ParseStartDate accepts YYYY-MM-DD, DD/MM/YYYY, or MM/DD/YYYY.
func ParseStartDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("invalid date format (use YYYY-MM-DD, DD/MM/YYYY, or MM/DD/YYYY)")
}

// Transactor runs fn atomically, injecting the transaction into fn's context
// so every store call joins it. The default invokes fn directly, which is the
// right behavior for the in-memory stores.
type Transactor func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	employees     store.Store
	logs          runlogstore.Store
	accounts      artifactstore.AccountStore
	events        artifactstore.EventStore
	notifications artifactstore.NotificationStore
	transact      Transactor
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

type Option func(*Service)

func WithTransactor(t Transactor) Option {
	return func(s *Service) {
		s.transact = t
	}
}

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

func New(employees store.Store, logs runlogstore.Store, accounts artifactstore.AccountStore, events artifactstore.EventStore, notifications artifactstore.NotificationStore, opts ...Option) (*Service, error) {
	if employees == nil {
		return nil, errors.New("employee store is required")
	}
	if logs == nil {
		return nil, errors.New("run log store is required")
	}
	if accounts == nil || events == nil || notifications == nil {
		return nil, errors.New("artifact stores are required")
	}
	s := &Service{
		employees:     employees,
		logs:          logs,
		accounts:      accounts,
		events:        events,
		notifications: notifications,
		transact: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateInput is the untrimmed, unparsed form of a new employee.
type CreateInput struct {
	Name       string
	Email      string
	Role       string
	Department string
	StartDate  string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Employee, error) {
	name := strings.TrimSpace(in.Name)
	addr := strings.TrimSpace(in.Email)
	role := strings.TrimSpace(in.Role)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if addr == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if role == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "role is required")
	}

	startDate, err := ParseStartDate(in.StartDate)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, err.Error())
	}

	emp := &models.Employee{
		Name:       name,
		Email:      addr,
		Role:       role,
		Department: strings.TrimSpace(in.Department),
		StartDate:  startDate,
		Status:     models.StatusPending,
	}
	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create employee")
	}
	s.metrics.ObserveEmployeeCreated()
	s.logger.InfoContext(ctx, "employee created", "employee_id", emp.ID, "email", email.Redact(emp.Email))
	return emp, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Employee, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list employees")
	}
	return employees, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Employee, error) {
	emp, err := s.employees.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "employee not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load employee")
	}
	return emp, nil
}

// Delete removes the employee together with its run log entries and derived
// artifacts.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.employees.Get(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "employee not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load employee")
	}

	err := s.transact(ctx, func(ctx context.Context) error {
		cascade := []func(context.Context, int64) error{
			s.logs.DeleteByEmployee,
			s.accounts.DeleteByEmployee,
			s.events.DeleteByEmployee,
			s.notifications.DeleteByEmployee,
		}
		for _, del := range cascade {
			if err := del(ctx, id); err != nil {
				return err
			}
		}
		return s.employees.Delete(ctx, id)
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete employee")
	}
	s.logger.InfoContext(ctx, "employee deleted", "employee_id", id)
	return nil
}

// RowError reports one rejected CSV line. Line numbers are 1-based and
// include the header line.
type RowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ImportSummary is the outcome of a CSV import.
type ImportSummary struct {
	Inserted  int        `json:"inserted"`
	Skipped   int        `json:"skipped"`
	Errors    int        `json:"errors"`
	ErrorRows []RowError `json:"error_rows"`
}

// ImportCSV bulk-creates employees from reader. Rows missing name, email, or
// role are skipped, as are rows whose email and start date match an existing
// employee. Unparseable rows count as errors without aborting the import.
func (s *Service) ImportCSV(ctx context.Context, reader io.Reader) (*ImportSummary, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "empty or unreadable csv")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, h := range []string{"name", "email", "role", "start_date"} {
		if _, ok := cols[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("missing headers: %s", strings.Join(missing, ", ")))
	}

	field := func(record []string, name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	summary := &ImportSummary{ErrorRows: []RowError{}}
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			summary.Errors++
			if len(summary.ErrorRows) < maxErrorRows {
				summary.ErrorRows = append(summary.ErrorRows, RowError{Line: line, Error: err.Error()})
			}
			continue
		}

		name := field(record, "name")
		addr := field(record, "email")
		role := field(record, "role")
		if name == "" || addr == "" || role == "" {
			summary.Skipped++
			continue
		}

		startDate, err := ParseStartDate(field(record, "start_date"))
		if err != nil {
			summary.Errors++
			if len(summary.ErrorRows) < maxErrorRows {
				summary.ErrorRows = append(summary.ErrorRows, RowError{Line: line, Error: err.Error()})
			}
			continue
		}

		_, err = s.employees.FindByEmailAndStartDate(ctx, addr, startDate)
		switch {
		case err == nil:
			summary.Skipped++
			continue
		case !errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check duplicate")
		}

		department := ""
		if _, ok := cols["department"]; ok {
			department = field(record, "department")
		}
		emp := &models.Employee{
			Name:       name,
			Email:      addr,
			Role:       role,
			Department: department,
			StartDate:  startDate,
			Status:     models.StatusPending,
		}
		if err := s.employees.Create(ctx, emp); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create employee")
		}
		s.metrics.ObserveEmployeeCreated()
		summary.Inserted++
	}

	s.logger.InfoContext(ctx, "csv import finished",
		"inserted", summary.Inserted,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
	)
	return summary, nil
}

// SampleCSV is the downloadable import template.
func SampleCSV() []byte {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"name", "email", "role", "department", "start_date"})
	_ = w.Write([]string{"Ada Lovelace", "ada@example.com", "AI Engineer", "R&D", "2026-09-01"})
	_ = w.Write([]string{"Grace Hopper", "grace@example.com", "Backend Engineer", "Platform", "2026-09-15"})
	w.Flush()
	return []byte(b.String())
}
