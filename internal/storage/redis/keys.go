package redis

import (
	"fmt"

	"github.com/mcoot/bingogame-go/internal/model"
)

// Key prefix for all bingo data
const keyPrefix = "bingo"

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// roomIndexKey returns the Redis key for the SET of live room codes
func roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// userKey returns the Redis key for a User
func userKey(uid model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, uid)
}
