package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/turn"
)

// roomTimers holds the pending callbacks for one room. A callback only acts
// if the generation it captured is still current.
type roomTimers struct {
	generation uint64
	call       clock.Timer
	turn       clock.Timer
}

func (c *Controller) nextGenerationLocked() uint64 {
	c.generation++
	return c.generation
}

func (c *Controller) timersForLocked(code model.RoomCode) *roomTimers {
	t, ok := c.timers[code]
	if !ok {
		t = &roomTimers{generation: c.nextGenerationLocked()}
		c.timers[code] = t
	}
	return t
}

// exitPlaying cancels every timer for the room. It runs on every path out
// of the playing state.
func (c *Controller) exitPlaying(code model.RoomCode) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()

	t, ok := c.timers[code]
	if !ok {
		return
	}
	if t.call != nil {
		t.call.Stop()
		t.call = nil
	}
	if t.turn != nil {
		t.turn.Stop()
		t.turn = nil
	}
	t.generation = c.nextGenerationLocked()
}

// forget drops the timer bookkeeping for a destroyed room
func (c *Controller) forget(code model.RoomCode) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	delete(c.timers, code)
}

func (c *Controller) isCurrent(code model.RoomCode, gen uint64) bool {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	t, ok := c.timers[code]
	return ok && !c.closed && t.generation == gen
}

// scheduleCall arms the broadcast caller for the next tick
func (c *Controller) scheduleCall(room *model.Room) {
	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	if c.closed {
		return
	}

	t := c.timersForLocked(room.Code)
	if t.call != nil {
		t.call.Stop()
	}
	code, gen := room.Code, t.generation
	t.call = c.clock.AfterFunc(room.Config.CallInterval, func() {
		c.callTick(code, gen)
	})
}

// armTurnTimer sets the deadline for the current duel turn and schedules its
// expiry. With no timeout configured the countdown is left to clients.
func (c *Controller) armTurnTimer(room *model.Room) {
	if room.Turn == nil || room.Config.TurnTimeout <= 0 {
		return
	}
	room.Turn.Deadline = c.clock.Now().Add(room.Config.TurnTimeout)

	c.timersMu.Lock()
	defer c.timersMu.Unlock()
	if c.closed {
		return
	}

	t := c.timersForLocked(room.Code)
	if t.turn != nil {
		t.turn.Stop()
	}
	code, gen, seq := room.Code, t.generation, room.Turn.Seq
	t.turn = c.clock.AfterFunc(room.Config.TurnTimeout, func() {
		c.turnExpired(code, gen, seq)
	})
}

// callTick draws the next number for a broadcast round
func (c *Controller) callTick(code model.RoomCode, gen uint64) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	if !c.isCurrent(code, gen) {
		return
	}

	ctx := context.Background()
	room, err := c.registry.GetRoom(ctx, string(code))
	if err != nil {
		c.logger.Warn("caller tick for missing room", slog.String("room_code", string(code)))
		return
	}
	if room.Status != model.RoomStatusPlaying || room.Config.Mode != model.ModeBroadcast {
		return
	}

	n, err := c.caller.Next(room.Called, room.Config.PoolMax)
	if errors.Is(err, model.ErrPoolExhausted) {
		c.logger.Info("number pool exhausted", slog.String("room_code", string(code)))
		c.notifier.Publish([]model.Event{c.newEvent(room, model.EventCallsExhausted, nil)})
		return
	}
	if err != nil {
		c.logger.Error("failed to draw number", slog.String("room_code", string(code)), slog.String("error", err.Error()))
		return
	}

	room.Called = append(room.Called, n)
	room.CurrentNumber = n
	if err := c.registry.SaveRoom(ctx, room); err != nil {
		c.logger.Error("failed to save room", slog.String("room_code", string(code)), slog.String("error", err.Error()))
		return
	}

	c.notifier.Publish([]model.Event{
		c.newEvent(room, model.EventNumberCalled, model.NumberCalledPayload{Number: n}),
	})
	c.scheduleCall(room)
}

// turnExpired applies a duel turn timeout
func (c *Controller) turnExpired(code model.RoomCode, gen uint64, seq int) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	if !c.isCurrent(code, gen) {
		return
	}

	ctx := context.Background()
	room, err := c.registry.GetRoom(ctx, string(code))
	if err != nil || room.Status != model.RoomStatusPlaying || room.Turn == nil {
		return
	}

	result, n := turn.Timeout(room.Turn, seq)
	var events []model.Event
	switch result {
	case turn.OutcomeStale:
		return
	case turn.OutcomePassed:
		c.armTurnTimer(room)
		events = append(events, c.newEvent(room, model.EventTurnSwitched, model.TurnSwitchedPayload{
			NextTurnUID: room.Turn.Owner(),
			Reason:      model.TurnSwitchTimeout,
		}))
	case turn.OutcomeAutoConfirmed:
		// The confirmer picks next, so after the swap they are the active player
		confirmer := room.GetPlayer(room.Turn.ActiveID)
		if confirmer != nil && confirmer.Board != nil {
			confirmer.Board.Mark(n)
		}
		c.armTurnTimer(room)
		events = append(events, c.newEvent(room, model.EventNumberConfirmed, model.NumberConfirmedPayload{
			Number:      n,
			UID:         room.Turn.ActiveID,
			NextTurnUID: room.Turn.Owner(),
			Automatic:   true,
		}))
		if confirmer != nil {
			events = append(events, c.boardEvent(room, confirmer))
		}
	}

	if err := c.registry.SaveRoom(ctx, room); err != nil {
		c.logger.Error("failed to save room", slog.String("room_code", string(code)), slog.String("error", err.Error()))
		return
	}

	c.logger.Debug("turn timed out", slog.String("room_code", string(code)), slog.Int("seq", seq))
	c.notifier.Publish(events)
}
