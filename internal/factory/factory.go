package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/dependencies/random"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/realtime"
	"github.com/mcoot/bingogame-go/internal/services/board"
	"github.com/mcoot/bingogame-go/internal/services/caller"
	"github.com/mcoot/bingogame-go/internal/services/registry"
	"github.com/mcoot/bingogame-go/internal/services/session"
	"github.com/mcoot/bingogame-go/internal/services/users"
	"github.com/mcoot/bingogame-go/internal/storage"
	"github.com/mcoot/bingogame-go/internal/storage/memory"
	redisstorage "github.com/mcoot/bingogame-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Registry          *registry.Registry
	UserService       *users.Service
	BoardService      *board.Service
	Caller            *caller.Caller
	SessionController *session.Controller
	HubManager        *realtime.HubManager
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RoomOverrides adjusts the per-mode room defaults (optional)
	RoomOverrides model.RoomOverrides
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.RoomOverrides, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, rules model.RoomOverrides, logger *slog.Logger) *App {
	reg := registry.New(store, clk, rnd, rules, logger)
	userService := users.New(store, clk, logger)
	boardService := board.New(rnd, logger)
	numberCaller := caller.New(rnd)
	hubManager := realtime.NewHubManager(logger)
	controller := session.NewController(reg, userService, boardService, numberCaller, clk, hubManager, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Registry:          reg,
		UserService:       userService,
		BoardService:      boardService,
		Caller:            numberCaller,
		SessionController: controller,
		HubManager:        hubManager,
	}
}
