package model

import "time"

// UserID is the stable, client-persisted identity of a player
type UserID string

// ConnID identifies one live connection; it changes on every reconnect
type ConnID string

// Player is a user's membership in a room
type Player struct {
	UserID      UserID
	ConnID      ConnID
	DisplayName string
	Board       *Board // nil until the first round is dealt
	JoinedAt    time.Time
}

// User is a profile that outlives individual rooms
type User struct {
	UID       UserID
	Name      string
	Points    int
	Wins      int
	CreatedAt time.Time
	UpdatedAt time.Time
}
