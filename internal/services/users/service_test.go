package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bingogame-go/internal/dependencies/mocks"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/storage/memory"
	"github.com/mcoot/bingogame-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(memory.New(), s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestCreateOrUpdateCreates() {
	user, created, err := s.service.CreateOrUpdate(s.ctx, "u1", " Alice ")
	s.Require().NoError(err)

	s.True(created)
	s.Equal("Alice", user.Name)
	s.Equal(0, user.Points)
	s.Equal(s.clock.Now(), user.CreatedAt)
}

func (s *ServiceSuite) TestCreateOrUpdateKeepsStats() {
	_, _, _ = s.service.CreateOrUpdate(s.ctx, "u1", "Alice")
	_, err := s.service.RecordWin(s.ctx, "u1", "Alice")
	s.Require().NoError(err)

	user, created, err := s.service.CreateOrUpdate(s.ctx, "u1", "Alicia")
	s.Require().NoError(err)

	s.False(created)
	s.Equal("Alicia", user.Name)
	s.Equal(1, user.Wins)
	s.Equal(PointsPerWin, user.Points)
}

func (s *ServiceSuite) TestCreateOrUpdateRejectsBlankFields() {
	_, _, err := s.service.CreateOrUpdate(s.ctx, "", "Alice")
	s.ErrorIs(err, model.ErrInvalidUser)

	_, _, err = s.service.CreateOrUpdate(s.ctx, "u1", "  ")
	s.ErrorIs(err, model.ErrInvalidUser)
}

func (s *ServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ServiceSuite) TestRecordWinCreatesMissingProfile() {
	user, err := s.service.RecordWin(s.ctx, "u2", "Ben")
	s.Require().NoError(err)

	s.Equal("Ben", user.Name)
	s.Equal(1, user.Wins)
}
