// Package turn implements the duel turn state machine.
//
// A duel turn has two phases. In AwaitingPick the active player picks a
// number that has not been called. In AwaitingConfirmation the other player
// marks that same number on their board, after which the roles swap and the
// confirming player picks next. Every transition bumps Seq so that a timeout
// scheduled for an earlier turn can be recognised and ignored.
package turn

import (
	"github.com/mcoot/bingogame-go/internal/model"
)

// Outcome describes what a timeout did to the turn
type Outcome int

const (
	// OutcomeStale means the timeout belonged to an earlier turn
	OutcomeStale Outcome = iota
	// OutcomePassed means the picker ran out of time and the turn passed
	OutcomePassed
	// OutcomeAutoConfirmed means the confirmer ran out of time and the number was marked for them
	OutcomeAutoConfirmed
)

// New starts a turn with first picking and second confirming
func New(first, second model.UserID) *model.TurnState {
	return &model.TurnState{
		Phase:        model.TurnAwaitingPick,
		ActiveID:     first,
		ConfirmingID: second,
		Seq:          1,
	}
}

// Pick records that uid picked n. With enforce unset, a pick from the
// non-active player makes them the picker for this turn.
func Pick(t *model.TurnState, uid model.UserID, n int, enforce bool) error {
	if t.Phase != model.TurnAwaitingPick {
		return model.ErrInvalidMove
	}
	if uid != t.ActiveID {
		if enforce || uid != t.ConfirmingID {
			return model.ErrInvalidMove
		}
		t.ActiveID, t.ConfirmingID = t.ConfirmingID, t.ActiveID
	}

	t.Phase = model.TurnAwaitingConfirmation
	t.RequiredNumber = n
	t.Seq++
	return nil
}

// Confirm records that uid marked n, completing the turn
func Confirm(t *model.TurnState, uid model.UserID, n int) error {
	if t.Phase != model.TurnAwaitingConfirmation {
		return model.ErrInvalidMove
	}
	if uid != t.ConfirmingID || n != t.RequiredNumber {
		return model.ErrInvalidMove
	}
	swap(t)
	return nil
}

// Pass hands the pick to the other player without calling a number
func Pass(t *model.TurnState, uid model.UserID) error {
	if t.Phase != model.TurnAwaitingPick || uid != t.ActiveID {
		return model.ErrInvalidMove
	}
	swap(t)
	return nil
}

// Timeout applies the expiry of the turn identified by seq.
// The confirmed number is returned when the outcome is OutcomeAutoConfirmed.
func Timeout(t *model.TurnState, seq int) (Outcome, int) {
	if t == nil || t.Seq != seq {
		return OutcomeStale, 0
	}
	switch t.Phase {
	case model.TurnAwaitingPick:
		swap(t)
		return OutcomePassed, 0
	case model.TurnAwaitingConfirmation:
		n := t.RequiredNumber
		swap(t)
		return OutcomeAutoConfirmed, n
	}
	return OutcomeStale, 0
}

// swap gives the pick to the other player
func swap(t *model.TurnState) {
	t.ActiveID, t.ConfirmingID = t.ConfirmingID, t.ActiveID
	t.Phase = model.TurnAwaitingPick
	t.RequiredNumber = 0
	t.Seq++
}
