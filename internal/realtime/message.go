package realtime

import (
	"encoding/json"
	"time"

	"github.com/mcoot/bingogame-go/internal/model"
)

// Inbound intent names
const (
	IntentJoinRoom       = "join_room"
	IntentStartGame      = "start_game"
	IntentClickCell      = "click_cell"
	IntentNumberSelected = "number_selected"
	IntentClaimWin       = "claim_win"
	IntentBingoClaimed   = "bingo_claimed"
	IntentRestartGame    = "restart_game"
	IntentSwitchTurn     = "switch_turn"
	IntentSignal         = "signal"
	IntentLeaveRoom      = "leave_room"
)

// Inbound is a message read from a WebSocket
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// IntentData is the union of every intent's fields
type IntentData struct {
	RoomCode string          `json:"roomCode"`
	UID      model.UserID    `json:"uid"`
	Name     string          `json:"name"`
	Number   int             `json:"number"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Outbound is the wire form of a model.Event
type Outbound struct {
	Event     model.EventType     `json:"event"`
	Room      model.RoomCode      `json:"room,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
	Data      any                 `json:"data,omitempty"`
	State     *model.RoomSnapshot `json:"state,omitempty"`
}

// Encode marshals an event into its wire form
func Encode(e model.Event) ([]byte, error) {
	return json.Marshal(Outbound{
		Event:     e.Type,
		Room:      e.RoomCode,
		Timestamp: e.Timestamp,
		Data:      e.Payload,
		State:     e.State,
	})
}
