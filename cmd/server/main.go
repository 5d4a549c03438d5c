package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mcoot/bingogame-go/internal/api"
	"github.com/mcoot/bingogame-go/internal/factory"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/realtime"
	redisstorage "github.com/mcoot/bingogame-go/internal/storage/redis"
)

const (
	// How often hubs with no subscribers are swept
	hubJanitorInterval = time.Minute

	// How often rooms nobody is playing in are checked for expiry
	roomSweepInterval = 5 * time.Minute

	// Empty rooms untouched for this long are removed
	defaultIdleRoomTTL = time.Hour
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:        logger,
		StorageType:   os.Getenv("STORAGE_TYPE"),
		RoomOverrides: roomOverridesFromEnv(logger),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	wsConfig := realtime.DefaultWSConfig()
	if rate, ok := envFloat(logger, "BINGO_INTENTS_PER_SECOND"); ok && rate > 0 {
		wsConfig.IntentsPerSecond = rate
		wsConfig.IntentBurst = max(1, int(2*rate))
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		Clock:             app.Clock,
		Registry:          app.Registry,
		SessionController: app.SessionController,
		UserService:       app.UserService,
		HubManager:        app.HubManager,
		WSConfig:          wsConfig,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port, ok := envInt(logger, "PORT"); ok {
		serverConfig.Port = port
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	go app.HubManager.RunJanitor(ctx, hubJanitorInterval)

	idleRoomTTL := defaultIdleRoomTTL
	if d, ok := envDuration(logger, "BINGO_IDLE_ROOM_TTL"); ok && d > 0 {
		idleRoomTTL = d
	}
	go app.SessionController.RunRoomSweeper(ctx, roomSweepInterval, idleRoomTTL)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	// Stop timers and drop rooms before closing subscriber streams
	if err := app.SessionController.Shutdown(context.Background()); err != nil {
		logger.Error("session shutdown error", slog.String("error", err.Error()))
		exitCode = 1
	}
	app.HubManager.CloseAll()
	if closer, ok := app.Storage.(io.Closer); ok {
		_ = closer.Close()
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}

// roomOverridesFromEnv reads the BINGO_* rule overrides
func roomOverridesFromEnv(logger *slog.Logger) model.RoomOverrides {
	var o model.RoomOverrides
	if d, ok := envDuration(logger, "BINGO_CALL_INTERVAL"); ok {
		o.CallInterval = &d
	}
	if d, ok := envDuration(logger, "BINGO_TURN_TIMEOUT"); ok {
		o.TurnTimeout = &d
	}
	if b, ok := envBool(logger, "BINGO_ENFORCE_TURNS"); ok {
		o.EnforceTurns = &b
	}
	return o
}

func envDuration(logger *slog.Logger, key string) (time.Duration, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("ignoring invalid duration", slog.String("key", key), slog.String("value", raw))
		return 0, false
	}
	return d, true
}

func envBool(logger *slog.Logger, key string) (bool, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("ignoring invalid bool", slog.String("key", key), slog.String("value", raw))
		return false, false
	}
	return b, true
}

func envInt(logger *slog.Logger, key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("ignoring invalid int", slog.String("key", key), slog.String("value", raw))
		return 0, false
	}
	return n, true
}

func envFloat(logger *slog.Logger, key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("ignoring invalid number", slog.String("key", key), slog.String("value", raw))
		return 0, false
	}
	return f, true
}
