package storage

import (
	"context"

	"github.com/mcoot/bingogame-go/internal/model"
)

// Storage defines the interface for data persistence.
// Implementations hand out copies: mutating a returned room or user has no
// effect until it is saved again.
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
	ListRoomCodes(ctx context.Context) ([]model.RoomCode, error)

	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, uid model.UserID) (*model.User, error)
}
