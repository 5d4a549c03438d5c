package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/storage"
)

// PointsPerWin is awarded to a user each time they win a round
const PointsPerWin = 10

// Service manages user profiles
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new UserService
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "users")),
	}
}

// CreateOrUpdate saves a profile under uid. An existing profile keeps its
// points and wins and only has its name replaced. The bool reports creation.
func (s *Service) CreateOrUpdate(ctx context.Context, uid model.UserID, name string) (*model.User, bool, error) {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(string(uid)) == "" || name == "" {
		return nil, false, model.ErrInvalidUser
	}

	now := s.clock.Now()
	user, err := s.storage.GetUser(ctx, uid)
	created := false
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		user = &model.User{UID: uid, CreatedAt: now}
		created = true
	case err != nil:
		return nil, false, err
	}

	user.Name = name
	user.UpdatedAt = now
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, false, err
	}
	return user, created, nil
}

// Get retrieves a profile by uid
func (s *Service) Get(ctx context.Context, uid model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, uid)
}

// RecordWin credits uid with a win, creating a profile under name if needed
func (s *Service) RecordWin(ctx context.Context, uid model.UserID, name string) (*model.User, error) {
	now := s.clock.Now()
	user, err := s.storage.GetUser(ctx, uid)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		user = &model.User{UID: uid, Name: name, CreatedAt: now}
	case err != nil:
		return nil, err
	}

	user.Wins++
	user.Points += PointsPerWin
	user.UpdatedAt = now
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("win recorded",
		slog.String("uid", string(uid)),
		slog.Int("wins", user.Wins),
		slog.Int("points", user.Points),
	)
	return user, nil
}
