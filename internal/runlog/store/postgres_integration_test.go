//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	employeemodels "onboard/internal/employee/models"
	employeestore "onboard/internal/employee/store"
	"onboard/internal/platform/postgres"
	"onboard/internal/runlog"
	"onboard/pkg/testutil/containers"
)

func TestPostgresRunLogStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)
	require.NoError(t, postgres.Migrate(ctx, pg.DB))

	employees := employeestore.NewPostgres(pg.DB)
	store := NewPostgres(pg.DB)

	emp := &employeemodels.Employee{
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		Role:      "AI Engineer",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:    employeemodels.StatusPending,
	}
	require.NoError(t, employees.Create(ctx, emp))

	entry := &runlog.Entry{
		EmployeeID: emp.ID,
		Step:       "Validate",
		Input:      map[string]any{"name": "Ada Lovelace"},
		Observations: []runlog.Observation{
			{Description: "loaded employee", Data: map[string]any{"id": float64(emp.ID)}},
			{Description: "rule checks completed", Data: map[string]any{"errors": []any{}}},
		},
		Output: map[string]any{"errors": []any{}},
		Status: runlog.StatusOK,
	}
	require.NoError(t, store.Append(ctx, entry))
	require.NotZero(t, entry.ID)

	second := &runlog.Entry{EmployeeID: emp.ID, Step: "Provision", Status: runlog.StatusOK}
	require.NoError(t, store.Append(ctx, second))

	entries, err := store.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Validate", entries[0].Step)
	assert.Equal(t, entry.Observations, entries[0].Observations)
	assert.Equal(t, runlog.StatusOK, entries[0].Status)
	assert.Less(t, entries[0].ID, entries[1].ID)

	require.NoError(t, store.DeleteByEmployee(ctx, emp.ID))
	entries, err = store.ListByEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
