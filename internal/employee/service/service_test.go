package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	artifactmodels "onboard/internal/artifact/models"
	artifactstore "onboard/internal/artifact/store"
	"onboard/internal/employee/models"
	"onboard/internal/employee/store"
	"onboard/internal/runlog"
	runlogstore "onboard/internal/runlog/store"
	dErrors "onboard/pkg/domain-errors"
)

type EmployeeServiceSuite struct {
	suite.Suite

	ctx           context.Context
	employees     *store.InMemory
	logs          *runlogstore.InMemory
	accounts      *artifactstore.InMemoryAccounts
	events        *artifactstore.InMemoryEvents
	notifications *artifactstore.InMemoryNotifications
	svc           *Service
}

func TestEmployeeServiceSuite(t *testing.T) {
	suite.Run(t, new(EmployeeServiceSuite))
}

func (s *EmployeeServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.employees = store.NewInMemory()
	s.logs = runlogstore.NewInMemory()
	s.accounts = artifactstore.NewInMemoryAccounts()
	s.events = artifactstore.NewInMemoryEvents()
	s.notifications = artifactstore.NewInMemoryNotifications()

	var err error
	s.svc, err = New(s.employees, s.logs, s.accounts, s.events, s.notifications)
	s.Require().NoError(err)
}

func (s *EmployeeServiceSuite) TestCreate() {
	s.Run("trims fields and starts pending", func() {
		emp, err := s.svc.Create(s.ctx, CreateInput{
			Name:       "  Ada Lovelace ",
			Email:      " ada@example.com ",
			Role:       " AI Engineer ",
			Department: " ML ",
			StartDate:  "2026-09-01",
		})
		s.Require().NoError(err)
		s.Equal("Ada Lovelace", emp.Name)
		s.Equal("ada@example.com", emp.Email)
		s.Equal("AI Engineer", emp.Role)
		s.Equal("ML", emp.Department)
		s.Equal(models.StatusPending, emp.Status)
		s.NotZero(emp.ID)
	})

	s.Run("accepts slash date formats", func() {
		emp, err := s.svc.Create(s.ctx, CreateInput{
			Name:      "Grace Hopper",
			Email:     "grace@example.com",
			Role:      "HR",
			StartDate: "01/09/2026",
		})
		s.Require().NoError(err)
		s.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), emp.StartDate)
	})

	s.Run("rejects bad dates", func() {
		_, err := s.svc.Create(s.ctx, CreateInput{
			Name:      "Grace Hopper",
			Email:     "grace@example.com",
			Role:      "HR",
			StartDate: "September 1st",
		})
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects missing required fields", func() {
		_, err := s.svc.Create(s.ctx, CreateInput{Email: "x@example.com", Role: "HR", StartDate: "2026-09-01"})
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})
}

func (s *EmployeeServiceSuite) TestDelete() {
	emp, err := s.svc.Create(s.ctx, CreateInput{
		Name: "Ada Lovelace", Email: "ada@example.com", Role: "AI Engineer", StartDate: "2026-09-01",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.logs.Append(s.ctx, &runlog.Entry{EmployeeID: emp.ID, Step: "Validate", Status: runlog.StatusOK}))
	s.Require().NoError(s.accounts.Create(s.ctx, &artifactmodels.Account{EmployeeID: emp.ID, Username: "ada1234"}))
	s.Require().NoError(s.events.Create(s.ctx, &artifactmodels.OrientationEvent{EmployeeID: emp.ID}))

	s.Run("cascades logs and artifacts", func() {
		s.Require().NoError(s.svc.Delete(s.ctx, emp.ID))

		_, err := s.svc.Get(s.ctx, emp.ID)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))

		entries, lerr := s.logs.ListByEmployee(s.ctx, emp.ID)
		s.Require().NoError(lerr)
		s.Empty(entries)
	})

	s.Run("unknown employee is not found", func() {
		err := s.svc.Delete(s.ctx, 9999)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *EmployeeServiceSuite) TestImportCSV() {
	s.Run("inserts, skips, and reports errors", func() {
		csvBody := strings.Join([]string{
			"name,email,role,department,start_date",
			"Ada Lovelace,ada@example.com,AI Engineer,R&D,2026-09-01",
			",missing@example.com,HR,,2026-09-01",
			"Bad Date,bad@example.com,HR,,someday",
			"Grace Hopper,grace@example.com,Backend Engineer,Platform,15/09/2026",
		}, "\n")

		summary, err := s.svc.ImportCSV(s.ctx, strings.NewReader(csvBody))
		s.Require().NoError(err)
		s.Equal(2, summary.Inserted)
		s.Equal(1, summary.Skipped)
		s.Equal(1, summary.Errors)
		s.Require().Len(summary.ErrorRows, 1)
		s.Equal(4, summary.ErrorRows[0].Line)
	})

	s.Run("skips duplicates by email and start date", func() {
		csvBody := strings.Join([]string{
			"name,email,role,start_date",
			"Ada Lovelace,ada@example.com,AI Engineer,2026-09-01",
		}, "\n")

		summary, err := s.svc.ImportCSV(s.ctx, strings.NewReader(csvBody))
		s.Require().NoError(err)
		s.Equal(0, summary.Inserted)
		s.Equal(1, summary.Skipped)
	})

	s.Run("rejects missing headers", func() {
		_, err := s.svc.ImportCSV(s.ctx, strings.NewReader("name,email\nAda,ada@example.com"))
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
	})
}

func TestParseStartDateFormats(t *testing.T) {
	cases := map[string]time.Time{
		"2026-09-01": time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		"01/09/2026": time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		// Day-first wins for ambiguous dates; month-first is the fallback.
		"09/15/2026": time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		got, err := ParseStartDate(input)
		if err != nil {
			t.Fatalf("ParseStartDate(%q): %v", input, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseStartDate(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := ParseStartDate("not a date"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}
