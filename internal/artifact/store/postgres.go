package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"onboard/internal/artifact/models"
	"onboard/pkg/platform/sentinel"
	txcontext "onboard/pkg/platform/tx"
)

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func q(ctx context.Context, db *sql.DB) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

// PostgresAccounts persists account artifacts.
type PostgresAccounts struct {
	db *sql.DB
}

func NewPostgresAccounts(db *sql.DB) *PostgresAccounts {
	return &PostgresAccounts{db: db}
}

func (s *PostgresAccounts) Create(ctx context.Context, acc *models.Account) error {
	perms, err := json.Marshal(acc.Permissions)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}
	query := `
		INSERT INTO accounts (employee_id, username, password_hash, permissions)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = q(ctx, s.db).QueryRowContext(ctx, query,
		acc.EmployeeID, acc.Username, acc.PasswordHash, perms,
	).Scan(&acc.ID, &acc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "accounts_employee_idx" {
				return sentinel.ErrConflict
			}
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *PostgresAccounts) FindByEmployee(ctx context.Context, employeeID int64) (*models.Account, error) {
	query := `
		SELECT id, employee_id, username, password_hash, permissions, created_at
		FROM accounts WHERE employee_id = $1
	`
	var acc models.Account
	var perms []byte
	err := q(ctx, s.db).QueryRowContext(ctx, query, employeeID).Scan(
		&acc.ID, &acc.EmployeeID, &acc.Username, &acc.PasswordHash, &perms, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if err := json.Unmarshal(perms, &acc.Permissions); err != nil {
		return nil, fmt.Errorf("unmarshal permissions: %w", err)
	}
	return &acc, nil
}

func (s *PostgresAccounts) DeleteByEmployee(ctx context.Context, employeeID int64) error {
	if _, err := q(ctx, s.db).ExecContext(ctx,
		`DELETE FROM accounts WHERE employee_id = $1`, employeeID); err != nil {
		return fmt.Errorf("delete accounts: %w", err)
	}
	return nil
}

// PostgresEvents persists orientation event artifacts.
type PostgresEvents struct {
	db *sql.DB
}

func NewPostgresEvents(db *sql.DB) *PostgresEvents {
	return &PostgresEvents{db: db}
}

func (s *PostgresEvents) Create(ctx context.Context, ev *models.OrientationEvent) error {
	payload, err := json.Marshal(ev.Event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	query := `
		INSERT INTO orientation_events (employee_id, event)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err = q(ctx, s.db).QueryRowContext(ctx, query, ev.EmployeeID, payload).
		Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert orientation event: %w", err)
	}
	return nil
}

func (s *PostgresEvents) FindByEmployee(ctx context.Context, employeeID int64) (*models.OrientationEvent, error) {
	query := `
		SELECT id, employee_id, event, created_at
		FROM orientation_events WHERE employee_id = $1
	`
	var ev models.OrientationEvent
	var payload []byte
	err := q(ctx, s.db).QueryRowContext(ctx, query, employeeID).Scan(
		&ev.ID, &ev.EmployeeID, &payload, &ev.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find orientation event: %w", err)
	}
	if err := json.Unmarshal(payload, &ev.Event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &ev, nil
}

func (s *PostgresEvents) DeleteByEmployee(ctx context.Context, employeeID int64) error {
	if _, err := q(ctx, s.db).ExecContext(ctx,
		`DELETE FROM orientation_events WHERE employee_id = $1`, employeeID); err != nil {
		return fmt.Errorf("delete orientation events: %w", err)
	}
	return nil
}

// PostgresNotifications persists notification artifacts.
type PostgresNotifications struct {
	db *sql.DB
}

func NewPostgresNotifications(db *sql.DB) *PostgresNotifications {
	return &PostgresNotifications{db: db}
}

func (s *PostgresNotifications) Create(ctx context.Context, n *models.Notification) error {
	sent, err := json.Marshal(n.Sent)
	if err != nil {
		return fmt.Errorf("marshal sent result: %w", err)
	}
	query := `
		INSERT INTO notifications (employee_id, channel, message, sent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = q(ctx, s.db).QueryRowContext(ctx, query, n.EmployeeID, n.Channel, n.Message, sent).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresNotifications) ListByEmployee(ctx context.Context, employeeID int64) ([]*models.Notification, error) {
	query := `
		SELECT id, employee_id, channel, message, sent, created_at
		FROM notifications WHERE employee_id = $1 ORDER BY id ASC
	`
	rows, err := q(ctx, s.db).QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var n models.Notification
		var sent []byte
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Channel, &n.Message, &sent, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if len(sent) > 0 {
			if err := json.Unmarshal(sent, &n.Sent); err != nil {
				return nil, fmt.Errorf("unmarshal sent result: %w", err)
			}
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (s *PostgresNotifications) DeleteByEmployee(ctx context.Context, employeeID int64) error {
	if _, err := q(ctx, s.db).ExecContext(ctx,
		`DELETE FROM notifications WHERE employee_id = $1`, employeeID); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}
