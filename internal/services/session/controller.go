// Package session runs the per-room game state machine.
//
// Every intent and every timer callback for a room runs under that room's
// lock: the room is loaded, mutated, saved and its events published before
// the lock is released, so subscribers see events in transition order.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/arbiter"
	"github.com/mcoot/bingogame-go/internal/services/board"
	"github.com/mcoot/bingogame-go/internal/services/caller"
	"github.com/mcoot/bingogame-go/internal/services/registry"
	"github.com/mcoot/bingogame-go/internal/services/turn"
	"github.com/mcoot/bingogame-go/internal/services/users"
)

// Notifier delivers outbound events. Publish must not block.
type Notifier interface {
	Publish(events []model.Event)
	CloseRoom(code model.RoomCode)
}

// Controller manages the room state machine
type Controller struct {
	registry *registry.Registry
	users    *users.Service
	boards   *board.Service
	caller   *caller.Caller
	clock    clock.Clock
	notifier Notifier
	logger   *slog.Logger

	locks *keyedMutex

	timersMu   sync.Mutex
	timers     map[model.RoomCode]*roomTimers
	generation uint64
	closed     bool
}

// NewController creates a new session Controller
func NewController(
	registry *registry.Registry,
	users *users.Service,
	boards *board.Service,
	caller *caller.Caller,
	clock clock.Clock,
	notifier Notifier,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		registry: registry,
		users:    users,
		boards:   boards,
		caller:   caller,
		clock:    clock,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "session")),
		locks:    newKeyedMutex(),
		timers:   make(map[model.RoomCode]*roomTimers),
	}
}

// outcome is what a step did to the room
type outcome struct {
	events    []model.Event
	unchanged bool // skip the save
	destroyed bool // room was removed, nothing to save
}

// apply runs fn against the room under its lock, then saves and publishes
func (c *Controller) apply(ctx context.Context, raw string, fn func(room *model.Room) (outcome, error)) (*model.Room, error) {
	code, err := model.NormalizeRoomCode(raw)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.Lock(string(code))
	defer unlock()

	room, err := c.registry.GetRoom(ctx, string(code))
	if err != nil {
		return nil, err
	}

	out, err := fn(room)
	if err != nil {
		return nil, err
	}

	if !out.unchanged && !out.destroyed {
		if err := c.registry.SaveRoom(ctx, room); err != nil {
			c.logger.Error("failed to save room",
				slog.String("room_code", string(code)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
	}

	c.notifier.Publish(out.events)
	return room, nil
}

// Join adds uid to the room, creating it with duel defaults if it does not
// exist yet. A uid already in the room is reconnected in place under conn.
func (c *Controller) Join(ctx context.Context, raw string, uid model.UserID, name string, conn model.ConnID) (model.RoomSnapshot, error) {
	code, err := model.NormalizeRoomCode(raw)
	if err != nil {
		return model.RoomSnapshot{}, err
	}
	if strings.TrimSpace(string(uid)) == "" {
		return model.RoomSnapshot{}, model.ErrInvalidUser
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = string(uid)
	}

	unlock := c.locks.Lock(string(code))
	defer unlock()

	cfg, err := c.registry.Config(model.ModeDuel)
	if err != nil {
		return model.RoomSnapshot{}, err
	}
	room, created, err := c.registry.GetOrCreateRoom(ctx, code, uid, cfg)
	if err != nil {
		return model.RoomSnapshot{}, err
	}

	player := room.GetPlayer(uid)
	if player != nil {
		player.ConnID = conn
		player.DisplayName = name
		c.logger.Info("player reconnected",
			slog.String("room_code", string(code)),
			slog.String("uid", string(uid)),
		)
	} else {
		if room.Config.IsFull(len(room.Players)) {
			return model.RoomSnapshot{}, model.ErrRoomFull
		}

		joined := model.Player{
			UserID:      uid,
			ConnID:      conn,
			DisplayName: name,
			JoinedAt:    c.clock.Now(),
		}
		// Late joiners take part in a broadcast round already underway
		if room.Status == model.RoomStatusPlaying {
			b, err := c.boards.Deal(room.Config)
			if err != nil {
				return model.RoomSnapshot{}, err
			}
			joined.Board = b
		}
		room.Players = append(room.Players, joined)
		if room.HostID == "" {
			room.HostID = uid
		}

		c.logger.Info("player joined",
			slog.String("room_code", string(code)),
			slog.String("uid", string(uid)),
			slog.Bool("room_created", created),
			slog.Int("player_count", len(room.Players)),
		)
	}

	events := []model.Event{c.newEvent(room, model.EventRoomState, nil)}

	if room.Config.Mode == model.ModeDuel &&
		room.Status == model.RoomStatusWaiting &&
		len(room.Players) >= room.Config.RequiredPlayers() {
		started, err := c.startRound(room)
		if err != nil {
			return model.RoomSnapshot{}, err
		}
		events = append(events, started...)
	} else if p := room.GetPlayer(uid); p.Board != nil && room.Status != model.RoomStatusWaiting {
		events = append(events, c.boardEvent(room, p))
	}

	if err := c.registry.SaveRoom(ctx, room); err != nil {
		return model.RoomSnapshot{}, err
	}
	c.notifier.Publish(events)

	return room.Snapshot(), nil
}

// member returns uid's player in the room. A non-empty conn must be the
// player's current connection; intents from a replaced connection are refused.
func member(room *model.Room, uid model.UserID, conn model.ConnID) (*model.Player, error) {
	player := room.GetPlayer(uid)
	if player == nil {
		return nil, model.ErrNotInRoom
	}
	if conn != "" && player.ConnID != conn {
		return nil, model.ErrStaleConnection
	}
	return player, nil
}

// Start begins a round. From finished it behaves like Restart.
func (c *Controller) Start(ctx context.Context, raw string, uid model.UserID, conn model.ConnID) error {
	_, err := c.apply(ctx, raw, func(room *model.Room) (outcome, error) {
		return c.begin(room, uid, conn, false)
	})
	return err
}

// Restart starts the next round after a win. When too few players remain
// the room returns to waiting instead.
func (c *Controller) Restart(ctx context.Context, raw string, uid model.UserID, conn model.ConnID) error {
	_, err := c.apply(ctx, raw, func(room *model.Room) (outcome, error) {
		return c.begin(room, uid, conn, true)
	})
	return err
}

func (c *Controller) begin(room *model.Room, uid model.UserID, conn model.ConnID, fallBackToWaiting bool) (outcome, error) {
	if _, err := member(room, uid, conn); err != nil {
		return outcome{}, err
	}

	switch room.Status {
	case model.RoomStatusPlaying:
		return outcome{}, model.ErrInvalidMove
	case model.RoomStatusFinished:
		fallBackToWaiting = true
	}

	if len(room.Players) < room.Config.RequiredPlayers() {
		if !fallBackToWaiting || room.Status == model.RoomStatusWaiting {
			return outcome{}, model.ErrInsufficientPlayers
		}
		c.exitPlaying(room.Code)
		resetRound(room)
		room.Status = model.RoomStatusWaiting
		return outcome{events: []model.Event{c.newEvent(room, model.EventRoomState, nil)}}, nil
	}

	events, err := c.startRound(room)
	if err != nil {
		return outcome{}, err
	}
	return outcome{events: events}, nil
}

// startRound deals fresh boards and moves the room to playing
func (c *Controller) startRound(room *model.Room) ([]model.Event, error) {
	c.exitPlaying(room.Code)
	resetRound(room)

	for i := range room.Players {
		b, err := c.boards.Deal(room.Config)
		if err != nil {
			return nil, err
		}
		room.Players[i].Board = b
	}

	room.Round++
	room.Status = model.RoomStatusPlaying

	payload := model.StartGamePayload{Round: room.Round, Players: room.PlayerViews()}
	if room.Config.Mode == model.ModeDuel {
		// Alternate who picks first between rounds
		first := room.Players[(room.Round-1)%2].UserID
		second := room.Opponent(first).UserID
		room.Turn = turn.New(first, second)
		payload.TurnUID = first
		c.armTurnTimer(room)
	} else {
		c.scheduleCall(room)
	}

	c.logger.Info("round started",
		slog.String("room_code", string(room.Code)),
		slog.Int("round", room.Round),
		slog.String("mode", string(room.Config.Mode)),
	)

	events := []model.Event{c.newEvent(room, model.EventStartGame, payload)}
	for i := range room.Players {
		events = append(events, c.boardEvent(room, &room.Players[i]))
	}
	return events, nil
}

func resetRound(room *model.Room) {
	room.Called = []int{}
	room.CurrentNumber = 0
	room.WinnerID = ""
	room.Turn = nil
}

// ClickCell handles a player selecting a number on their board.
// Every intent takes the sending connection; an empty conn skips the
// connection check for callers that act on a player's behalf.
func (c *Controller) ClickCell(ctx context.Context, raw string, uid model.UserID, conn model.ConnID, n int) error {
	_, err := c.apply(ctx, raw, func(room *model.Room) (outcome, error) {
		player, err := member(room, uid, conn)
		if err != nil {
			return outcome{}, err
		}
		if room.Status != model.RoomStatusPlaying || player.Board == nil {
			return outcome{}, model.ErrGameNotPlaying
		}
		if n < 1 || n > room.Config.PoolMax {
			return outcome{}, model.ErrInvalidMove
		}

		if room.Config.Mode == model.ModeDuel {
			return c.duelClick(room, player, n)
		}
		return c.broadcastClick(room, player, n)
	})
	return err
}

func (c *Controller) duelClick(room *model.Room, player *model.Player, n int) (outcome, error) {
	t := room.Turn
	if t == nil {
		return outcome{}, model.ErrGameNotPlaying
	}

	if t.Phase == model.TurnAwaitingPick {
		if room.HasCalled(n) || !player.Board.Contains(n) {
			return outcome{}, model.ErrInvalidMove
		}
		if err := turn.Pick(t, player.UserID, n, room.Config.EnforceTurns); err != nil {
			return outcome{}, err
		}
		player.Board.Mark(n)
		room.Called = append(room.Called, n)
		room.CurrentNumber = n
		c.armTurnTimer(room)

		return outcome{events: []model.Event{
			c.newEvent(room, model.EventNumberSelected, model.NumberSelectedPayload{
				Number:      n,
				UID:         player.UserID,
				NextTurnUID: t.Owner(),
			}),
			c.boardEvent(room, player),
		}}, nil
	}

	if err := turn.Confirm(t, player.UserID, n); err != nil {
		return outcome{}, err
	}
	player.Board.Mark(n)
	c.armTurnTimer(room)

	return outcome{events: []model.Event{
		c.newEvent(room, model.EventNumberConfirmed, model.NumberConfirmedPayload{
			Number:      n,
			UID:         player.UserID,
			NextTurnUID: t.Owner(),
		}),
		c.boardEvent(room, player),
	}}, nil
}

func (c *Controller) broadcastClick(room *model.Room, player *model.Player, n int) (outcome, error) {
	if !room.HasCalled(n) || !player.Board.Contains(n) {
		return outcome{}, model.ErrInvalidMove
	}
	if player.Board.IsMarked(n) {
		return outcome{unchanged: true}, nil
	}
	player.Board.Mark(n)
	return outcome{events: []model.Event{c.boardEvent(room, player)}}, nil
}

// ClaimWin arbitrates a win claim. The first valid claim finishes the round.
func (c *Controller) ClaimWin(ctx context.Context, raw string, uid model.UserID, conn model.ConnID) error {
	_, err := c.apply(ctx, raw, func(room *model.Room) (outcome, error) {
		player, err := member(room, uid, conn)
		if err != nil {
			return outcome{}, err
		}
		switch room.Status {
		case model.RoomStatusFinished:
			return outcome{}, model.ErrDuplicateClaim
		case model.RoomStatusWaiting:
			return outcome{}, model.ErrGameNotPlaying
		}
		if player.Board == nil {
			return outcome{}, model.ErrInvalidClaim
		}

		result := arbiter.Evaluate(player.Board, room.Config.WinThreshold)
		if !result.IsWin {
			return outcome{}, model.ErrInvalidClaim
		}

		c.exitPlaying(room.Code)
		room.Status = model.RoomStatusFinished
		room.WinnerID = uid
		room.Turn = nil

		if _, err := c.users.RecordWin(ctx, uid, player.DisplayName); err != nil {
			c.logger.Error("failed to record win",
				slog.String("uid", string(uid)),
				slog.String("error", err.Error()),
			)
		}

		c.logger.Info("round won",
			slog.String("room_code", string(room.Code)),
			slog.String("winner", string(uid)),
			slog.Int("lines", result.CompletedLines),
		)

		return outcome{events: []model.Event{
			c.newEvent(room, model.EventGameOver, model.GameOverPayload{
				WinnerUID:  uid,
				WinnerName: player.DisplayName,
				Lines:      result.CompletedLines,
			}),
		}}, nil
	})
	return err
}

// PassTurn hands the pick to the other duel player
func (c *Controller) PassTurn(ctx context.Context, raw string, uid model.UserID, conn model.ConnID) error {
	_, err := c.apply(ctx, raw, func(room *model.Room) (outcome, error) {
		if _, err := member(room, uid, conn); err != nil {
			return outcome{}, err
		}
		if room.Status != model.RoomStatusPlaying || room.Turn == nil {
			return outcome{}, model.ErrInvalidMove
		}
		if err := turn.Pass(room.Turn, uid); err != nil {
			return outcome{}, err
		}
		c.armTurnTimer(room)

		return outcome{events: []model.Event{
			c.newEvent(room, model.EventTurnSwitched, model.TurnSwitchedPayload{
				NextTurnUID: room.Turn.Owner(),
				Reason:      model.TurnSwitchPass,
			}),
		}}, nil
	})
	return err
}

// Signal relays an opaque payload to every other connection in the room
func (c *Controller) Signal(ctx context.Context, raw string, uid model.UserID, conn model.ConnID, data json.RawMessage) error {
	_, err := c.apply(ctx, raw, func(room *model.Room) (outcome, error) {
		if _, err := member(room, uid, conn); err != nil {
			return outcome{}, err
		}
		return outcome{
			unchanged: true,
			events: []model.Event{{
				Type:      model.EventSignal,
				Timestamp: c.clock.Now(),
				RoomCode:  room.Code,
				Except:    conn,
				Payload:   model.SignalPayload{From: uid, Data: data},
			}},
		}, nil
	})
	return err
}

// Leave removes uid from the room. A non-empty conn that no longer matches the
// player's connection is a stale disconnect and is ignored.
func (c *Controller) Leave(ctx context.Context, raw string, uid model.UserID, conn model.ConnID) error {
	_, err := c.apply(ctx, raw, func(room *model.Room) (outcome, error) {
		player := room.GetPlayer(uid)
		if player == nil {
			return outcome{}, model.ErrNotInRoom
		}
		if conn != "" && player.ConnID != conn {
			c.logger.Debug("ignoring stale disconnect",
				slog.String("room_code", string(room.Code)),
				slog.String("uid", string(uid)),
			)
			return outcome{unchanged: true}, nil
		}

		name := player.DisplayName
		room.RemovePlayer(uid)

		c.logger.Info("player left",
			slog.String("room_code", string(room.Code)),
			slog.String("uid", string(uid)),
			slog.Int("player_count", len(room.Players)),
		)

		if room.IsEmpty() {
			c.exitPlaying(room.Code)
			c.forget(room.Code)
			if err := c.registry.RemoveRoom(ctx, room.Code); err != nil {
				return outcome{}, err
			}
			c.notifier.CloseRoom(room.Code)
			return outcome{destroyed: true}, nil
		}

		if room.HostID == uid {
			room.HostID = room.Players[0].UserID
		}

		if room.Status != model.RoomStatusWaiting && len(room.Players) < room.Config.RequiredPlayers() {
			c.exitPlaying(room.Code)
			resetRound(room)
			room.Status = model.RoomStatusWaiting
		}

		return outcome{events: []model.Event{
			c.newEvent(room, model.EventPlayerLeft, model.PlayerLeftPayload{
				UID:         uid,
				DisplayName: name,
				Players:     room.PlayerViews(),
			}),
			c.newEvent(room, model.EventRoomState, nil),
		}}, nil
	})
	return err
}

// Snapshot returns the current public state of a room
func (c *Controller) Snapshot(ctx context.Context, raw string) (model.RoomSnapshot, error) {
	room, err := c.apply(ctx, raw, func(room *model.Room) (outcome, error) {
		return outcome{unchanged: true}, nil
	})
	if err != nil {
		return model.RoomSnapshot{}, err
	}
	return room.Snapshot(), nil
}

// SweepIdleRooms removes every room that has had no players for at least
// ttl. Returns the codes removed.
func (c *Controller) SweepIdleRooms(ctx context.Context, ttl time.Duration) ([]model.RoomCode, error) {
	codes, err := c.registry.ActiveRooms(ctx)
	if err != nil {
		return nil, err
	}

	var removed []model.RoomCode
	for _, code := range codes {
		ok, err := c.sweepRoom(ctx, code, ttl)
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, code)
		}
	}

	if len(removed) > 0 {
		c.logger.Info("idle rooms removed", slog.Int("room_count", len(removed)))
	}
	return removed, nil
}

func (c *Controller) sweepRoom(ctx context.Context, code model.RoomCode, ttl time.Duration) (bool, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	removed, err := c.registry.RemoveIfIdle(ctx, code, ttl)
	if err != nil || !removed {
		return false, err
	}
	c.exitPlaying(code)
	c.forget(code)
	c.notifier.CloseRoom(code)
	return true, nil
}

// RunRoomSweeper calls SweepIdleRooms every interval until ctx is done
func (c *Controller) RunRoomSweeper(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := c.SweepIdleRooms(ctx, ttl); err != nil {
				c.logger.Error("idle room sweep failed", slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Shutdown cancels every timer and clears the registry
func (c *Controller) Shutdown(ctx context.Context) error {
	c.timersMu.Lock()
	c.closed = true
	for code, t := range c.timers {
		if t.call != nil {
			t.call.Stop()
		}
		if t.turn != nil {
			t.turn.Stop()
		}
		delete(c.timers, code)
	}
	c.timersMu.Unlock()

	c.logger.Info("session controller shutting down")
	return c.registry.Clear(ctx)
}

func (c *Controller) newEvent(room *model.Room, eventType model.EventType, payload any) model.Event {
	snap := room.Snapshot()
	return model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		RoomCode:  room.Code,
		Payload:   payload,
		State:     &snap,
	}
}

// boardEvent sends a player their own board
func (c *Controller) boardEvent(room *model.Room, player *model.Player) model.Event {
	b := player.Board
	result := arbiter.Evaluate(b, room.Config.WinThreshold)
	return model.Event{
		Type:      model.EventBoard,
		Timestamp: c.clock.Now(),
		RoomCode:  room.Code,
		To:        player.ConnID,
		Payload: model.BoardPayload{
			Numbers:    b.Numbers,
			Marked:     b.Marked,
			FreeCenter: b.FreeCenter,
			Lines:      result.CompletedLines,
			Progress:   arbiter.Progress(result.CompletedLines),
		},
	}
}
