package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line     string
		event    string
		number   int
		hasError bool
	}{
		{line: "17", event: "click_cell", number: 17},
		{line: "  start ", event: "start_game"},
		{line: "RESTART", event: "restart_game"},
		{line: "bingo", event: "claim_win"},
		{line: "claim", event: "claim_win"},
		{line: "pass", event: "switch_turn"},
		{line: "", event: ""},
		{line: "0", hasError: true},
		{line: "dance", hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			event, data, err := parseCommand(tt.line)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.event, event)
			if tt.number > 0 {
				assert.Equal(t, tt.number, data["number"])
			}
		})
	}
}

func TestParseCommand_Quit(t *testing.T) {
	_, _, err := parseCommand("quit")
	assert.ErrorIs(t, err, errQuit)
}

func TestWebSocketURL(t *testing.T) {
	c := &Config{ServerURL: "http://localhost:8080/"}
	assert.Equal(t, "ws://localhost:8080/api/v1/ws", c.WebSocketURL("/api/v1/ws"))

	c.ServerURL = "https://bingo.example.com"
	assert.Equal(t, "wss://bingo.example.com/api/v1/ws", c.WebSocketURL("/api/v1/ws"))
}

func TestSaveAndLoadUID(t *testing.T) {
	c := &Config{UIDFile: t.TempDir() + "/nested/uid"}
	require.NoError(t, c.SaveUID("u-123"))

	loaded := &Config{UIDFile: c.UIDFile}
	require.NoError(t, loaded.LoadUID())
	assert.Equal(t, "u-123", loaded.UID)

	missing := &Config{UIDFile: t.TempDir() + "/none"}
	require.NoError(t, missing.LoadUID())
	assert.Empty(t, missing.UID)
}

func TestRoomSummary(t *testing.T) {
	current := 7
	winner := "bob"
	r := Room{
		RoomCode:      "AB12",
		Status:        "playing",
		Round:         2,
		CurrentNumber: &current,
		Turn:          &Turn{Phase: "awaiting_confirmation", ConfirmingUID: "bob", RequiredNumber: 7},
	}
	assert.Equal(t, "AB12 playing round 2, current 7, bob to confirm 7", r.Summary())

	r.Turn = nil
	r.Status = "finished"
	r.Winner = &winner
	assert.Equal(t, "AB12 finished round 2, current 7, winner bob", r.Summary())
}
