package model

import "time"

// TurnPhase identifies which action the duel is waiting for
type TurnPhase string

const (
	// TurnAwaitingPick waits for the active player to pick a number
	TurnAwaitingPick TurnPhase = "awaiting_pick"
	// TurnAwaitingConfirmation waits for the other player to mark the picked number
	TurnAwaitingConfirmation TurnPhase = "awaiting_confirmation"
)

// TurnState tracks turn ownership in a duel
type TurnState struct {
	Phase          TurnPhase
	ActiveID       UserID // Player who picks
	ConfirmingID   UserID // Player who must mark RequiredNumber
	RequiredNumber int

	// Seq increases on every transition so stale timeouts can be discarded
	Seq      int
	Deadline time.Time // Zero when the countdown is advisory
}

// Owner returns the player whose action is expected next
func (t *TurnState) Owner() UserID {
	if t.Phase == TurnAwaitingConfirmation {
		return t.ConfirmingID
	}
	return t.ActiveID
}
