package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/assistant"
	artifactstore "onboard/internal/artifact/store"
	employeemodels "onboard/internal/employee/models"
	employeestore "onboard/internal/employee/store"
	"onboard/internal/mailer"
	"onboard/internal/pipeline/step"
	runlogstore "onboard/internal/runlog/store"
	dErrors "onboard/pkg/domain-errors"
)

type fallbackAssistant struct{}

func (fallbackAssistant) Configured() bool { return false }

func (fallbackAssistant) Normalize(context.Context, assistant.Snapshot) assistant.NormalizeResult {
	return assistant.FallbackNormalize()
}

func (fallbackAssistant) ProposeMeeting(context.Context, assistant.MeetingRequest) (assistant.MeetingProposal, bool) {
	return assistant.MeetingProposal{}, false
}

func (fallbackAssistant) DraftWelcomeMessage(context.Context, string, string, string) string {
	return "welcome"
}

type fixture struct {
	employees *employeestore.InMemory
	logs      *runlogstore.InMemory
	orch      *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	employees := employeestore.NewInMemory()
	logs := runlogstore.NewInMemory()
	assist := fallbackAssistant{}

	schedule, err := step.NewSchedule(employees, artifactstore.NewInMemoryEvents(), logs, assist, step.ScheduleConfig{Simulate: true})
	require.NoError(t, err)
	validate, err := step.NewValidate(employees, logs, assist)
	require.NoError(t, err)
	provision, err := step.NewProvision(employees, artifactstore.NewInMemoryAccounts(), logs, schedule)
	require.NoError(t, err)
	notify, err := step.NewNotify(employees, artifactstore.NewInMemoryNotifications(), logs, mailer.NewConsole(nil), step.NotifyConfig{})
	require.NoError(t, err)

	orch, err := New(employees, validate, provision, notify)
	require.NoError(t, err)
	return &fixture{employees: employees, logs: logs, orch: orch}
}

func (f *fixture) addEmployee(t *testing.T) int64 {
	t.Helper()
	emp := &employeemodels.Employee{
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		Role:      "AI Engineer",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.employees.Create(context.Background(), emp))
	return emp.ID
}

func TestRunReturnsThreeLogIDsInCallOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.addEmployee(t)

	trail, err := f.orch.Run(ctx, id)
	require.NoError(t, err)
	require.Len(t, trail, 3)

	entries, err := f.logs.ListByEmployee(ctx, id)
	require.NoError(t, err)
	// Schedule logs first, inside Provision; its id never joins the trail.
	require.Len(t, entries, 4)
	assert.Equal(t, "Validate", entries[0].Step)
	assert.Equal(t, "Schedule", entries[1].Step)
	assert.Equal(t, "Provision", entries[2].Step)
	assert.Equal(t, "Notify", entries[3].Step)
	assert.Equal(t, []int64{entries[0].ID, entries[2].ID, entries[3].ID}, trail)
}

func TestRunUnknownEmployeeProducesNoEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	trail, err := f.orch.Run(ctx, 42)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	assert.Nil(t, trail)
	assert.Zero(t, f.logs.Count())
}

func TestRunIsIdempotentAcrossInvocations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.addEmployee(t)

	_, err := f.orch.Run(ctx, id)
	require.NoError(t, err)
	_, err = f.orch.Run(ctx, id)
	require.NoError(t, err)

	entries, err := f.logs.ListByEmployee(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 8)

	// Second Provision reuses the account and the first run's event.
	var provisions []map[string]any
	for _, e := range entries {
		if e.Step == "Provision" {
			provisions = append(provisions, e.Output)
		}
	}
	require.Len(t, provisions, 2)
	assert.Equal(t, provisions[0]["username"], provisions[1]["username"])
}
