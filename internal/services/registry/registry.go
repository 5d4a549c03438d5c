// Package registry tracks the active rooms and hands out room codes.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/dependencies/random"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 4
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// MaxCodeAttempts bounds collision retries when generating a code
	MaxCodeAttempts = 32
)

// Registry owns the set of active rooms
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	rules   model.RoomOverrides
	logger  *slog.Logger

	// Serialises code allocation so two creates cannot claim the same code
	createMu sync.Mutex
}

// New creates a new Registry
func New(storage storage.Storage, clock clock.Clock, random random.Random, rules model.RoomOverrides, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		clock:   clock,
		random:  random,
		rules:   rules,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Config returns the rules new rooms of the given mode are created with
func (r *Registry) Config(mode model.GameMode) (model.RoomConfig, error) {
	cfg, err := model.ConfigForMode(mode)
	if err != nil {
		return model.RoomConfig{}, err
	}
	return r.rules.Apply(cfg), nil
}

// CreateRoom creates a waiting room under a freshly generated code
func (r *Registry) CreateRoom(ctx context.Context, hostID model.UserID, cfg model.RoomConfig) (*model.Room, error) {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	var code model.RoomCode
	for attempt := 0; ; attempt++ {
		if attempt == MaxCodeAttempts {
			r.logger.Error("room code space exhausted", slog.Int("attempts", attempt))
			return nil, model.ErrCodeSpaceExhausted
		}
		code = model.RoomCode(r.random.String(RoomCodeLength, RoomCodeAlphabet))
		if _, err := model.NormalizeRoomCode(string(code)); err != nil {
			continue
		}
		exists, err := r.storage.RoomExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	room := r.newRoom(code, hostID, cfg)
	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	r.logger.Info("room created",
		slog.String("room_code", string(code)),
		slog.String("mode", string(cfg.Mode)),
		slog.String("host_id", string(hostID)),
	)
	return room, nil
}

// GetRoom retrieves a room by code, normalising the code first
func (r *Registry) GetRoom(ctx context.Context, raw string) (*model.Room, error) {
	code, err := model.NormalizeRoomCode(raw)
	if err != nil {
		return nil, err
	}
	return r.storage.GetRoom(ctx, code)
}

// GetOrCreateRoom returns the room under code, creating a waiting room with
// cfg when none exists. The bool reports whether the room was created.
// Callers must hold the room's lock.
func (r *Registry) GetOrCreateRoom(ctx context.Context, code model.RoomCode, hostID model.UserID, cfg model.RoomConfig) (*model.Room, bool, error) {
	room, err := r.storage.GetRoom(ctx, code)
	if err == nil {
		return room, false, nil
	}
	if !errors.Is(err, model.ErrRoomNotFound) {
		return nil, false, err
	}

	r.createMu.Lock()
	defer r.createMu.Unlock()

	// CreateRoom may have claimed the code since the lookup above
	room, err = r.storage.GetRoom(ctx, code)
	if err == nil {
		return room, false, nil
	}
	if !errors.Is(err, model.ErrRoomNotFound) {
		return nil, false, err
	}

	room = r.newRoom(code, hostID, cfg)
	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, false, err
	}

	r.logger.Info("room created on first join",
		slog.String("room_code", string(code)),
		slog.String("host_id", string(hostID)),
	)
	return room, true, nil
}

// SaveRoom persists a room after mutation
func (r *Registry) SaveRoom(ctx context.Context, room *model.Room) error {
	room.UpdatedAt = r.clock.Now()
	return r.storage.SaveRoom(ctx, room)
}

// RemoveRoom deletes a room
func (r *Registry) RemoveRoom(ctx context.Context, code model.RoomCode) error {
	if err := r.storage.DeleteRoom(ctx, code); err != nil {
		return fmt.Errorf("removing room %s: %w", code, err)
	}
	r.logger.Info("room removed", slog.String("room_code", string(code)))
	return nil
}

// RemoveIfIdle deletes the room under code when it has no players and has
// not changed for at least ttl. Callers must hold the room's lock.
func (r *Registry) RemoveIfIdle(ctx context.Context, code model.RoomCode, ttl time.Duration) (bool, error) {
	room, err := r.storage.GetRoom(ctx, code)
	if errors.Is(err, model.ErrRoomNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !room.IsEmpty() || r.clock.Now().Sub(room.UpdatedAt) < ttl {
		return false, nil
	}
	if err := r.RemoveRoom(ctx, code); err != nil {
		return false, err
	}
	return true, nil
}

// ActiveRooms returns the codes of every live room
func (r *Registry) ActiveRooms(ctx context.Context) ([]model.RoomCode, error) {
	return r.storage.ListRoomCodes(ctx)
}

// Clear removes every room
func (r *Registry) Clear(ctx context.Context) error {
	codes, err := r.storage.ListRoomCodes(ctx)
	if err != nil {
		return err
	}
	for _, code := range codes {
		if err := r.storage.DeleteRoom(ctx, code); err != nil {
			return err
		}
	}
	r.logger.Info("registry cleared", slog.Int("room_count", len(codes)))
	return nil
}

func (r *Registry) newRoom(code model.RoomCode, hostID model.UserID, cfg model.RoomConfig) *model.Room {
	now := r.clock.Now()
	return &model.Room{
		Code:      code,
		HostID:    hostID,
		Config:    cfg,
		Status:    model.RoomStatusWaiting,
		Players:   []model.Player{},
		Called:    []int{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
