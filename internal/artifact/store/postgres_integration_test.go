//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/artifact/models"
	employeemodels "onboard/internal/employee/models"
	employeestore "onboard/internal/employee/store"
	"onboard/internal/platform/postgres"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/testutil/containers"
)

func TestPostgresArtifactStores(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)
	require.NoError(t, postgres.Migrate(ctx, pg.DB))

	employees := employeestore.NewPostgres(pg.DB)
	accounts := NewPostgresAccounts(pg.DB)
	events := NewPostgresEvents(pg.DB)
	notifications := NewPostgresNotifications(pg.DB)

	addEmployee := func(t *testing.T, email string) int64 {
		t.Helper()
		emp := &employeemodels.Employee{
			Name:      "Ada Lovelace",
			Email:     email,
			Role:      "AI Engineer",
			StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			Status:    employeemodels.StatusPending,
		}
		require.NoError(t, employees.Create(ctx, emp))
		return emp.ID
	}

	t.Run("account per employee is unique", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx))
		id := addEmployee(t, "ada@example.com")

		first := &models.Account{EmployeeID: id, Username: "ada1a2b", PasswordHash: "$2a$x", Permissions: []string{"repo:read"}}
		require.NoError(t, accounts.Create(ctx, first))

		dup := &models.Account{EmployeeID: id, Username: "ada9f9f", PasswordHash: "$2a$y", Permissions: []string{"repo:read"}}
		assert.ErrorIs(t, accounts.Create(ctx, dup), sentinel.ErrConflict)

		got, err := accounts.FindByEmployee(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "ada1a2b", got.Username)
		assert.Equal(t, []string{"repo:read"}, got.Permissions)
	})

	t.Run("global username collision is distinct from reuse", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx))
		first := addEmployee(t, "ada@example.com")
		second := addEmployee(t, "grace@example.com")

		require.NoError(t, accounts.Create(ctx, &models.Account{EmployeeID: first, Username: "shared01", PasswordHash: "$2a$x", Permissions: []string{"repo:read"}}))
		err := accounts.Create(ctx, &models.Account{EmployeeID: second, Username: "shared01", PasswordHash: "$2a$y", Permissions: []string{"repo:read"}})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("event payload round trip", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx))
		id := addEmployee(t, "ada@example.com")

		ev := &models.OrientationEvent{
			EmployeeID: id,
			Event: models.EventPayload{
				Summary:     "Day-1 Orientation: Ada Lovelace",
				Start:       models.EventTime{DateTime: "2026-09-01T10:00:00", TimeZone: "Asia/Bangkok"},
				End:         models.EventTime{DateTime: "2026-09-01T11:00:00", TimeZone: "Asia/Bangkok"},
				Attendees:   []models.EventAttendee{{Email: "ada@example.com"}},
				Location:    "HQ – Room A",
				Description: "Welcome & IT setup",
				Status:      "confirmed",
				Simulate:    true,
			},
		}
		require.NoError(t, events.Create(ctx, ev))

		got, err := events.FindByEmployee(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, ev.Event, got.Event)

		assert.ErrorIs(t, events.Create(ctx, &models.OrientationEvent{EmployeeID: id, Event: ev.Event}), sentinel.ErrConflict)
	})

	t.Run("notifications append per employee", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx))
		id := addEmployee(t, "ada@example.com")

		sent := models.SentResult{Channel: "console", OK: true}
		require.NoError(t, notifications.Create(ctx, &models.Notification{EmployeeID: id, Channel: "console", Message: "welcome", Sent: sent}))
		require.NoError(t, notifications.Create(ctx, &models.Notification{EmployeeID: id, Channel: "console", Message: "welcome again", Sent: sent}))

		got, err := notifications.ListByEmployee(ctx, id)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, sent, got[0].Sent)
	})

	t.Run("employee delete cascades artifacts", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx))
		id := addEmployee(t, "ada@example.com")

		require.NoError(t, accounts.Create(ctx, &models.Account{EmployeeID: id, Username: "ada1a2b", PasswordHash: "$2a$x", Permissions: []string{"repo:read"}}))
		require.NoError(t, employees.Delete(ctx, id))

		_, err := accounts.FindByEmployee(ctx, id)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
