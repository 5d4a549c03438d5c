package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/bingogame-go/internal/api/handler"
	"github.com/mcoot/bingogame-go/internal/api/middleware"
	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/realtime"
	"github.com/mcoot/bingogame-go/internal/services/registry"
	"github.com/mcoot/bingogame-go/internal/services/session"
	"github.com/mcoot/bingogame-go/internal/services/users"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	Clock             clock.Clock
	Registry          *registry.Registry
	SessionController *session.Controller
	UserService       *users.Service
	HubManager        *realtime.HubManager
	WSConfig          realtime.WSConfig
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	userHandler := handler.NewUserHandler(cfg.UserService)
	roomHandler := handler.NewRoomHandler(cfg.Registry, cfg.SessionController, cfg.HubManager, cfg.Clock, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Registry)
	wsHandler := realtime.NewWSHandler(cfg.SessionController, cfg.HubManager, cfg.WSConfig, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestID())
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// User routes
	api.HandleFunc("/users", userHandler.CreateOrUpdate).Methods(http.MethodPost)
	api.HandleFunc("/users/{uid}", userHandler.Get).Methods(http.MethodGet)

	// Room routes
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/join", roomHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/events", roomHandler.Events).Methods(http.MethodGet)

	// Player connections
	api.Handle("/ws", wsHandler).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	return r
}
