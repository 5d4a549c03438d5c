package response

import (
	"time"

	"github.com/mcoot/bingogame-go/internal/model"
)

// User represents a user in API responses
type User struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	Wins      int       `json:"wins"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		UID:       string(u.UID),
		Name:      u.Name,
		Points:    u.Points,
		Wins:      u.Wins,
		CreatedAt: u.CreatedAt,
	}
}

// RoomCode is the response for room create and join
type RoomCode struct {
	Code string `json:"code"`
}

// Health is the response for the health check
type Health struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}
