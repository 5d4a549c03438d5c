package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bingogame-go/internal/model"
)

func TestPickThenConfirmSwapsRoles(t *testing.T) {
	ts := New("a", "b")

	require.NoError(t, Pick(ts, "a", 7, true))
	assert.Equal(t, model.TurnAwaitingConfirmation, ts.Phase)
	assert.Equal(t, model.UserID("b"), ts.Owner())
	assert.Equal(t, 7, ts.RequiredNumber)

	require.NoError(t, Confirm(ts, "b", 7))
	assert.Equal(t, model.TurnAwaitingPick, ts.Phase)
	assert.Equal(t, model.UserID("b"), ts.ActiveID)
	assert.Equal(t, model.UserID("a"), ts.ConfirmingID)
	assert.Equal(t, 3, ts.Seq)
}

func TestPickOutOfTurnRejectedWhenEnforced(t *testing.T) {
	ts := New("a", "b")

	assert.ErrorIs(t, Pick(ts, "b", 7, true), model.ErrInvalidMove)
	assert.Equal(t, 1, ts.Seq)
}

func TestPickOutOfTurnTakesOverWhenNotEnforced(t *testing.T) {
	ts := New("a", "b")

	require.NoError(t, Pick(ts, "b", 7, false))
	assert.Equal(t, model.UserID("b"), ts.ActiveID)
	assert.Equal(t, model.UserID("a"), ts.Owner())
}

func TestConfirmRequiresMatchingNumberAndPlayer(t *testing.T) {
	ts := New("a", "b")
	require.NoError(t, Pick(ts, "a", 7, true))

	assert.ErrorIs(t, Confirm(ts, "b", 8), model.ErrInvalidMove)
	assert.ErrorIs(t, Confirm(ts, "a", 7), model.ErrInvalidMove)
	assert.ErrorIs(t, Pick(ts, "a", 9, true), model.ErrInvalidMove)
}

func TestPass(t *testing.T) {
	ts := New("a", "b")

	assert.ErrorIs(t, Pass(ts, "b"), model.ErrInvalidMove)
	require.NoError(t, Pass(ts, "a"))
	assert.Equal(t, model.UserID("b"), ts.ActiveID)
}

func TestTimeoutDuringPickPasses(t *testing.T) {
	ts := New("a", "b")

	outcome, _ := Timeout(ts, 1)

	assert.Equal(t, OutcomePassed, outcome)
	assert.Equal(t, model.UserID("b"), ts.ActiveID)
}

func TestTimeoutDuringConfirmationAutoConfirms(t *testing.T) {
	ts := New("a", "b")
	require.NoError(t, Pick(ts, "a", 7, true))

	outcome, n := Timeout(ts, ts.Seq)

	assert.Equal(t, OutcomeAutoConfirmed, outcome)
	assert.Equal(t, 7, n)
	assert.Equal(t, model.UserID("b"), ts.ActiveID)
}

func TestStaleTimeoutIgnored(t *testing.T) {
	ts := New("a", "b")
	staleSeq := ts.Seq
	require.NoError(t, Pick(ts, "a", 7, true))

	outcome, _ := Timeout(ts, staleSeq)

	assert.Equal(t, OutcomeStale, outcome)
	assert.Equal(t, model.TurnAwaitingConfirmation, ts.Phase)
}
