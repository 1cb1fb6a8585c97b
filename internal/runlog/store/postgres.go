package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"onboard/internal/runlog"
	txcontext "onboard/pkg/platform/tx"
)

// Postgres persists run log entries. Append-only by construction: there is no
// update statement in this file.
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

func (s *Postgres) Append(ctx context.Context, entry *runlog.Entry) error {
	input, err := json.Marshal(entry.Input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	observations, err := json.Marshal(entry.Observations)
	if err != nil {
		return fmt.Errorf("marshal observations: %w", err)
	}
	output, err := json.Marshal(entry.Output)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	query := `
		INSERT INTO run_logs (employee_id, step, input, observations, output, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err = s.q(ctx).QueryRowContext(ctx, query,
		entry.EmployeeID, entry.Step, input, observations, output, entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run log: %w", err)
	}
	return nil
}

func (s *Postgres) ListByEmployee(ctx context.Context, employeeID int64) ([]*runlog.Entry, error) {
	query := `
		SELECT id, employee_id, step, input, observations, output, status, created_at
		FROM run_logs WHERE employee_id = $1 ORDER BY id ASC
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list run logs: %w", err)
	}
	defer rows.Close()

	var out []*runlog.Entry
	for rows.Next() {
		var e runlog.Entry
		var input, observations, output []byte
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Step, &input, &observations, &output, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run log: %w", err)
		}
		if len(input) > 0 {
			if err := json.Unmarshal(input, &e.Input); err != nil {
				return nil, fmt.Errorf("unmarshal input: %w", err)
			}
		}
		if len(observations) > 0 {
			if err := json.Unmarshal(observations, &e.Observations); err != nil {
				return nil, fmt.Errorf("unmarshal observations: %w", err)
			}
		}
		if len(output) > 0 {
			if err := json.Unmarshal(output, &e.Output); err != nil {
				return nil, fmt.Errorf("unmarshal output: %w", err)
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteByEmployee(ctx context.Context, employeeID int64) error {
	if _, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM run_logs WHERE employee_id = $1`, employeeID); err != nil {
		return fmt.Errorf("delete run logs: %w", err)
	}
	return nil
}
