package model

import (
	"strings"
	"time"
)

// RoomCode is the short human-readable identifier players share to join a room
type RoomCode string

// RoomStatus represents the current phase of a room
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"  // Accepting joins, no round in progress
	RoomStatusPlaying  RoomStatus = "playing"  // Round in progress
	RoomStatusFinished RoomStatus = "finished" // Round won, waiting for a restart
)

// GameMode selects the rules a room is played with
type GameMode string

const (
	// ModeDuel is the two-player pick-and-confirm variant
	ModeDuel GameMode = "duel"
	// ModeBroadcast is the server-called variant for any number of players
	ModeBroadcast GameMode = "broadcast"
)

// Room code length bounds
const (
	MinRoomCodeLength = 4
	MaxRoomCodeLength = 6
)

// NormalizeRoomCode upper-cases a user-supplied code and validates its shape.
// Every lookup goes through here so "ab12" and "AB12" name the same room.
func NormalizeRoomCode(raw string) (RoomCode, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) < MinRoomCodeLength || len(code) > MaxRoomCodeLength {
		return "", ErrInvalidRoomCode
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", ErrInvalidRoomCode
		}
	}
	return RoomCode(code), nil
}

// RoomConfig holds the per-room rules, fixed when the room is created
type RoomConfig struct {
	Mode         GameMode
	PoolMax      int           // Numbers are drawn from [1, PoolMax]
	Banded       bool          // B/I/N/G/O column ranges
	FreeCenter   bool          // Centre cell is permanently marked
	Capacity     int           // 0 means unbounded
	WinThreshold int           // Completed lines needed to win
	CallInterval time.Duration // Broadcast mode only
	TurnTimeout  time.Duration // Duel mode only, 0 keeps the countdown advisory
	EnforceTurns bool          // Reject clicks from the player who does not own the turn
}

// DuelConfig returns the default configuration for two-player rooms
func DuelConfig() RoomConfig {
	return RoomConfig{
		Mode:         ModeDuel,
		PoolMax:      25,
		Banded:       false,
		FreeCenter:   false,
		Capacity:     2,
		WinThreshold: 5,
		TurnTimeout:  10 * time.Second,
		EnforceTurns: true,
	}
}

// BroadcastConfig returns the default configuration for server-called rooms
func BroadcastConfig() RoomConfig {
	return RoomConfig{
		Mode:         ModeBroadcast,
		PoolMax:      75,
		Banded:       true,
		FreeCenter:   true,
		Capacity:     0,
		WinThreshold: 1,
		CallInterval: 4 * time.Second,
		EnforceTurns: true,
	}
}

// ConfigForMode returns the default configuration for the named mode.
// An empty mode selects duel.
func ConfigForMode(mode GameMode) (RoomConfig, error) {
	switch mode {
	case ModeDuel, "":
		return DuelConfig(), nil
	case ModeBroadcast:
		return BroadcastConfig(), nil
	default:
		return RoomConfig{}, ErrInvalidMode
	}
}

// RoomOverrides adjusts the mode defaults for every room on a server.
// Nil fields keep the default.
type RoomOverrides struct {
	CallInterval *time.Duration
	TurnTimeout  *time.Duration
	EnforceTurns *bool
}

// Apply returns cfg with the overrides laid over it
func (o RoomOverrides) Apply(cfg RoomConfig) RoomConfig {
	if o.CallInterval != nil && *o.CallInterval > 0 && cfg.Mode == ModeBroadcast {
		cfg.CallInterval = *o.CallInterval
	}
	if o.TurnTimeout != nil && *o.TurnTimeout >= 0 && cfg.Mode == ModeDuel {
		cfg.TurnTimeout = *o.TurnTimeout
	}
	if o.EnforceTurns != nil {
		cfg.EnforceTurns = *o.EnforceTurns
	}
	return cfg
}

// RequiredPlayers returns how many players must be present before a round can start
func (c RoomConfig) RequiredPlayers() int {
	if c.Mode == ModeDuel {
		return 2
	}
	return 1
}

// IsFull reports whether a room holding n players can accept another
func (c RoomConfig) IsFull(n int) bool {
	return c.Capacity > 0 && n >= c.Capacity
}

// Room is the authoritative state of one game session
type Room struct {
	Code   RoomCode
	HostID UserID
	Config RoomConfig
	Status RoomStatus

	// Players in join order
	Players []Player

	// Duel mode turn tracking, nil outside a duel round
	Turn *TurnState

	// Numbers called this round, in call order
	Called        []int
	CurrentNumber int // 0 when nothing has been called yet

	WinnerID UserID
	Round    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetPlayer returns the player with the given user ID, or nil if not found
func (r *Room) GetPlayer(uid UserID) *Player {
	for i := range r.Players {
		if r.Players[i].UserID == uid {
			return &r.Players[i]
		}
	}
	return nil
}

// Opponent returns the first player that is not uid, or nil
func (r *Room) Opponent(uid UserID) *Player {
	for i := range r.Players {
		if r.Players[i].UserID != uid {
			return &r.Players[i]
		}
	}
	return nil
}

// RemovePlayer drops the player with the given user ID, preserving join order
func (r *Room) RemovePlayer(uid UserID) bool {
	for i, p := range r.Players {
		if p.UserID == uid {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// HasCalled reports whether n has been called this round
func (r *Room) HasCalled(n int) bool {
	for _, c := range r.Called {
		if c == n {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the room has no players left
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// Clone returns a deep copy that shares no mutable state with r
func (r *Room) Clone() *Room {
	c := *r
	c.Players = make([]Player, len(r.Players))
	for i, p := range r.Players {
		c.Players[i] = p
		if p.Board != nil {
			b := *p.Board
			c.Players[i].Board = &b
		}
	}
	if r.Turn != nil {
		t := *r.Turn
		c.Turn = &t
	}
	c.Called = append([]int(nil), r.Called...)
	return &c
}
