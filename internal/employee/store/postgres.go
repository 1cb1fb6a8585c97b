package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"onboard/internal/employee/models"
	"onboard/pkg/platform/sentinel"
	txcontext "onboard/pkg/platform/tx"
)

// Postgres persists employees in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, emp *models.Employee) error {
	query := `
		INSERT INTO employees (name, email, role, department, start_date, status)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING id, created_at
	`
	status := emp.Status
	if status == "" {
		status = models.StatusPending
	}
	err := s.q(ctx).QueryRowContext(ctx, query,
		emp.Name, emp.Email, emp.Role, emp.Department, emp.StartDate, status,
	).Scan(&emp.ID, &emp.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	emp.Status = status
	return nil
}

func (s *Postgres) Get(ctx context.Context, id int64) (*models.Employee, error) {
	query := `
		SELECT id, name, email, role, COALESCE(department, ''), start_date, status,
		       created_at, COALESCE(updated_at, created_at)
		FROM employees WHERE id = $1
	`
	emp, err := scanEmployee(s.q(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return emp, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Employee, error) {
	query := `
		SELECT id, name, email, role, COALESCE(department, ''), start_date, status,
		       created_at, COALESCE(updated_at, created_at)
		FROM employees ORDER BY id DESC
	`
	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []*models.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Postgres) FindByEmailAndStartDate(ctx context.Context, email string, startDate time.Time) (*models.Employee, error) {
	query := `
		SELECT id, name, email, role, COALESCE(department, ''), start_date, status,
		       created_at, COALESCE(updated_at, created_at)
		FROM employees WHERE email = $1 AND start_date = $2
		LIMIT 1
	`
	emp, err := scanEmployee(s.q(ctx).QueryRowContext(ctx, query, email, startDate))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return emp, nil
}

func (s *Postgres) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE employees SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update employee status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id int64) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*models.Employee, error) {
	var emp models.Employee
	err := row.Scan(&emp.ID, &emp.Name, &emp.Email, &emp.Role, &emp.Department,
		&emp.StartDate, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &emp, nil
}
