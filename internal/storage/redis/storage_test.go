package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bingogame-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) sampleRoom() *model.Room {
	board := &model.Board{FreeCenter: true}
	board.Numbers[0][0] = 5
	board.Marked[2][2] = true

	return &model.Room{
		Code:    "ABCD",
		HostID:  "u1",
		Config:  model.BroadcastConfig(),
		Status:  model.RoomStatusPlaying,
		Players: []model.Player{{UserID: "u1", ConnID: "c1", DisplayName: "Alice", Board: board}},
		Called:  []int{5, 17},
		Round:   1,
	}
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	err := s.storage.SaveRoom(s.ctx, s.sampleRoom())
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(model.ModeBroadcast, retrieved.Config.Mode)
	s.Equal(4*time.Second, retrieved.Config.CallInterval)
	s.Equal([]int{5, 17}, retrieved.Called)
	s.Require().NotNil(retrieved.Players[0].Board)
	s.Equal(5, retrieved.Players[0].Board.Numbers[0][0])
	s.True(retrieved.Players[0].Board.Marked[2][2])
}

func (s *StorageSuite) TestSaveRoomAppliesTTL() {
	_ = s.storage.SaveRoom(s.ctx, s.sampleRoom())

	ttl := s.mini.TTL(roomKey("ABCD"))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NONE")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteRoomRemovesFromIndex() {
	_ = s.storage.SaveRoom(s.ctx, s.sampleRoom())

	err := s.storage.DeleteRoom(s.ctx, "ABCD")
	s.Require().NoError(err)

	exists, _ := s.storage.RoomExists(s.ctx, "ABCD")
	s.False(exists)
	codes, err := s.storage.ListRoomCodes(s.ctx)
	s.Require().NoError(err)
	s.Empty(codes)
}

func (s *StorageSuite) TestListRoomCodesPrunesExpired() {
	_ = s.storage.SaveRoom(s.ctx, s.sampleRoom())
	other := s.sampleRoom()
	other.Code = "WXYZ"
	_ = s.storage.SaveRoom(s.ctx, other)

	s.mini.Del(roomKey("WXYZ"))

	codes, err := s.storage.ListRoomCodes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.RoomCode{"ABCD"}, codes)

	members, err := s.mini.Members(roomIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{"ABCD"}, members)
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	err := s.storage.SaveUser(s.ctx, &model.User{UID: "u1", Name: "Alice", Points: 10, Wins: 1})
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("Alice", user.Name)
	s.Equal(10, user.Points)
	s.Equal(time.Duration(0), s.mini.TTL(userKey("u1")))
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}
