package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"onboard/internal/artifact/models"
	"onboard/pkg/platform/sentinel"
)

type ArtifactStoreSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *ArtifactStoreSuite) SetupTest() {
	s.ctx = context.Background()
}

func TestArtifactStoreSuite(t *testing.T) {
	suite.Run(t, new(ArtifactStoreSuite))
}

func (s *ArtifactStoreSuite) TestAccountUniquenessPerEmployee() {
	accounts := NewInMemoryAccounts()

	first := &models.Account{EmployeeID: 1, Username: "ada1a2b", PasswordHash: "x", Permissions: []string{"repo:read"}}
	s.Require().NoError(accounts.Create(s.ctx, first))
	s.NotZero(first.ID)

	s.Run("second account for same employee conflicts", func() {
		dup := &models.Account{EmployeeID: 1, Username: "ada9z9z", PasswordHash: "y"}
		s.Require().ErrorIs(accounts.Create(s.ctx, dup), sentinel.ErrConflict)
	})

	s.Run("username collision across employees is distinct", func() {
		collide := &models.Account{EmployeeID: 2, Username: "ada1a2b", PasswordHash: "z"}
		s.Require().ErrorIs(accounts.Create(s.ctx, collide), ErrUsernameTaken)
	})

	s.Run("find returns the stored account", func() {
		found, err := accounts.FindByEmployee(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal("ada1a2b", found.Username)
	})

	s.Run("find misses unknown employee", func() {
		_, err := accounts.FindByEmployee(s.ctx, 42)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ArtifactStoreSuite) TestEventUniquenessPerEmployee() {
	events := NewInMemoryEvents()

	ev := &models.OrientationEvent{EmployeeID: 1, Event: models.EventPayload{Summary: "Day-1 Orientation: Ada"}}
	s.Require().NoError(events.Create(s.ctx, ev))

	dup := &models.OrientationEvent{EmployeeID: 1}
	s.Require().ErrorIs(events.Create(s.ctx, dup), sentinel.ErrConflict)

	found, err := events.FindByEmployee(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("Day-1 Orientation: Ada", found.Event.Summary)
}

func (s *ArtifactStoreSuite) TestNotificationsAppend() {
	notifications := NewInMemoryNotifications()

	s.Require().NoError(notifications.Create(s.ctx, &models.Notification{EmployeeID: 1, Channel: "console", Message: "hi"}))
	s.Require().NoError(notifications.Create(s.ctx, &models.Notification{EmployeeID: 1, Channel: "email", Message: "hi again"}))

	list, err := notifications.ListByEmployee(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(list, 2)
	s.Equal("console", list[0].Channel)
}

func (s *ArtifactStoreSuite) TestDeleteByEmployeeFreesUsername() {
	accounts := NewInMemoryAccounts()
	s.Require().NoError(accounts.Create(s.ctx, &models.Account{EmployeeID: 1, Username: "taken", PasswordHash: "x"}))
	s.Require().NoError(accounts.DeleteByEmployee(s.ctx, 1))

	again := &models.Account{EmployeeID: 2, Username: "taken", PasswordHash: "y"}
	s.Require().NoError(accounts.Create(s.ctx, again))
}
