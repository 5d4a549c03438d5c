package model

import (
	"encoding/json"
	"time"
)

// EventType identifies the type of event
type EventType string

const (
	// Room events
	EventRoomState  EventType = "room_state"
	EventPlayerLeft EventType = "player_left"
	EventSignal     EventType = "signal"

	// Round events
	EventStartGame       EventType = "start_game"
	EventNumberCalled    EventType = "number_called"
	EventNumberSelected  EventType = "number_selected"
	EventNumberConfirmed EventType = "number_confirmed"
	EventTurnSwitched    EventType = "turn_switched"
	EventCallsExhausted  EventType = "calls_exhausted"
	EventGameOver        EventType = "game_over"

	// Private events, only ever sent to one connection
	EventBoard EventType = "board"
	EventError EventType = "error"
)

// Event is the base structure for all outbound events.
// With To set the event goes to that connection only; with Except set
// it goes to everyone in the room but that connection.
type Event struct {
	Type      EventType
	Timestamp time.Time
	RoomCode  RoomCode
	To        ConnID
	Except    ConnID
	Payload   any           // Type-specific data
	State     *RoomSnapshot // Room state after the transition, nil for private events
}

// IsPrivate reports whether the event may only reach a single connection.
// A private event with no To is undeliverable.
func (e Event) IsPrivate() bool {
	return e.To != "" || e.Type == EventBoard || e.Type == EventError
}

// StartGamePayload contains data for start game events
type StartGamePayload struct {
	Round   int          `json:"round"`
	TurnUID UserID       `json:"turnUid,omitempty"`
	Players []PlayerView `json:"players"`
}

// NumberCalledPayload contains data for number called events
type NumberCalledPayload struct {
	Number int `json:"number"`
}

// NumberSelectedPayload contains data for number selected events
type NumberSelectedPayload struct {
	Number      int    `json:"number"`
	UID         UserID `json:"uid"`
	NextTurnUID UserID `json:"nextTurnUid"`
}

// NumberConfirmedPayload contains data for number confirmed events
type NumberConfirmedPayload struct {
	Number      int    `json:"number"`
	UID         UserID `json:"uid"`
	NextTurnUID UserID `json:"nextTurnUid"`
	Automatic   bool   `json:"automatic,omitempty"`
}

// TurnSwitchedPayload contains data for turn switched events
type TurnSwitchedPayload struct {
	NextTurnUID UserID `json:"nextTurnUid"`
	Reason      string `json:"reason"`
}

// Turn switch reasons
const (
	TurnSwitchPass    = "pass"
	TurnSwitchTimeout = "timeout"
)

// GameOverPayload contains data for game over events
type GameOverPayload struct {
	WinnerUID  UserID `json:"winnerUid"`
	WinnerName string `json:"winnerName"`
	Lines      int    `json:"lines"`
}

// PlayerLeftPayload contains data for player left events
type PlayerLeftPayload struct {
	UID         UserID       `json:"uid"`
	DisplayName string       `json:"name"`
	Players     []PlayerView `json:"players"`
}

// SignalPayload carries an opaque peer-to-peer message
type SignalPayload struct {
	From UserID          `json:"from"`
	Data json.RawMessage `json:"data,omitempty"`
}

// BoardPayload is a player's private view of their own board
type BoardPayload struct {
	Numbers    [BoardSize][BoardSize]int  `json:"numbers"`
	Marked     [BoardSize][BoardSize]bool `json:"marked"`
	FreeCenter bool                       `json:"freeCenter"`
	Lines      int                        `json:"lines"`
	Progress   string                     `json:"progress"`
}

// ErrorPayload is sent privately when an intent is rejected
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
