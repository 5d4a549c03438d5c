package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/bingogame-go/internal/api/request"
	"github.com/mcoot/bingogame-go/internal/api/response"
	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/realtime"
	"github.com/mcoot/bingogame-go/internal/services/registry"
	"github.com/mcoot/bingogame-go/internal/services/session"
)

// RoomHandler handles room endpoints and the spectator stream
type RoomHandler struct {
	registry   *registry.Registry
	controller *session.Controller
	hubs       *realtime.HubManager
	clock      clock.Clock
	logger     *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(
	registry *registry.Registry,
	controller *session.Controller,
	hubs *realtime.HubManager,
	clock clock.Clock,
	logger *slog.Logger,
) *RoomHandler {
	return &RoomHandler{
		registry:   registry,
		controller: controller,
		hubs:       hubs,
		clock:      clock,
		logger:     logger.With(slog.String("component", "rooms_api")),
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if strings.TrimSpace(req.HostID) == "" {
		WriteError(w, NewInvalidRequestError("hostId is required"))
		return
	}

	cfg, err := h.registry.Config(model.GameMode(req.Mode))
	if err != nil {
		WriteError(w, err)
		return
	}

	room, err := h.registry.CreateRoom(r.Context(), model.UserID(req.HostID), cfg)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomCode{Code: string(room.Code)})
}

// Join handles POST /api/v1/rooms/join. It only confirms the room exists;
// players are added when their WebSocket sends join_room.
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return
	}

	room, err := h.registry.GetRoom(r.Context(), req.Code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomCode{Code: string(room.Code)})
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.Snapshot(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, snap)
}

// Events handles GET /api/v1/rooms/{code}/events, a read-only SSE stream
// of the room's public events
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.Snapshot(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}

	initial, err := realtime.Encode(model.Event{
		Type:      model.EventRoomState,
		Timestamp: h.clock.Now(),
		RoomCode:  snap.RoomCode,
		State:     &snap,
	})
	if err != nil {
		h.logger.Error("failed to encode initial state", slog.String("error", err.Error()))
		WriteError(w, NewInternalError())
		return
	}

	h.logger.Info("spectator connected", slog.String("room_code", string(snap.RoomCode)))
	realtime.ServeSSE(w, r, h.hubs.GetOrCreateHub(snap.RoomCode), initial)
}
