package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/bingogame-go/internal/api/request"
	"github.com/mcoot/bingogame-go/internal/api/response"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/users"
)

// UserHandler handles user profile endpoints
type UserHandler struct {
	users *users.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *users.Service) *UserHandler {
	return &UserHandler{users: users}
}

// CreateOrUpdate handles POST /api/v1/users
func (h *UserHandler) CreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	user, created, err := h.users.CreateOrUpdate(r.Context(), model.UserID(req.UID), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(w, status, response.UserFromModel(user))
}

// Get handles GET /api/v1/users/{uid}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid := model.UserID(mux.Vars(r)["uid"])

	user, err := h.users.Get(r.Context(), uid)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}
