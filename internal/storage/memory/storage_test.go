package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := &model.Room{
		Code:      "ABCD",
		Config:    model.DuelConfig(),
		Status:    model.RoomStatusWaiting,
		Players:   []model.Player{{UserID: "u1", DisplayName: "Alice"}},
		CreatedAt: time.Now(),
	}

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(room.Code, retrieved.Code)
	s.Equal("Alice", retrieved.Players[0].DisplayName)
}

func (s *StorageSuite) TestGetRoomReturnsCopy() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "ABCD", Players: []model.Player{{UserID: "u1"}}})

	retrieved, _ := s.storage.GetRoom(s.ctx, "ABCD")
	retrieved.Players[0].DisplayName = "mutated"

	again, _ := s.storage.GetRoom(s.ctx, "ABCD")
	s.Empty(again.Players[0].DisplayName)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NONE")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteRoom() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "ABCD"})

	err := s.storage.DeleteRoom(s.ctx, "ABCD")
	s.Require().NoError(err)

	exists, err := s.storage.RoomExists(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestListRoomCodes() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "WXYZ"})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{Code: "ABCD"})

	codes, err := s.storage.ListRoomCodes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.RoomCode{"ABCD", "WXYZ"}, codes)
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	err := s.storage.SaveUser(s.ctx, &model.User{UID: "u1", Name: "Alice", Wins: 2})
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("Alice", user.Name)
	s.Equal(2, user.Wins)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}
