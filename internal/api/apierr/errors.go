package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/bingogame-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidRoomCode     = "INVALID_ROOM_CODE"
	CodeInvalidMode         = "INVALID_MODE"
	CodeInvalidUser         = "INVALID_USER"
	CodeInvalidMove         = "INVALID_MOVE"
	CodeInvalidClaim        = "INVALID_CLAIM"
	CodeDuplicateClaim      = "DUPLICATE_CLAIM"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeRoomFull            = "ROOM_FULL"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeNotInRoom           = "NOT_IN_ROOM"
	CodeAlreadyInRoom       = "ALREADY_IN_ROOM"
	CodeStaleConnection     = "STALE_CONNECTION"
	CodeNoGameInProgress    = "NO_GAME_IN_PROGRESS"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUnavailable         = "UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Describe returns the client-facing code and message for err.
// The realtime transport uses it for private error events.
func Describe(err error) APIError {
	return toHTTPError(err).apiError
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrInvalidRoomCode):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRoomCode, "Room code must be 4-6 letters or digits"}}
	case errors.Is(err, model.ErrInvalidMode):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidMode, "Mode must be duel or broadcast"}}
	case errors.Is(err, model.ErrInvalidUser):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidUser, "uid and name are required"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrNotInRoom):
		return &httpError{http.StatusNotFound, APIError{CodeNotInRoom, "Not in this room"}}
	case errors.Is(err, model.ErrAlreadyInRoom):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInRoom, "Connection already joined another room"}}
	case errors.Is(err, model.ErrStaleConnection):
		return &httpError{http.StatusConflict, APIError{CodeStaleConnection, "Player reconnected elsewhere"}}
	case errors.Is(err, model.ErrGameNotPlaying):
		return &httpError{http.StatusConflict, APIError{CodeNoGameInProgress, "No round in progress"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientPlayers, "Not enough players to start"}}
	case errors.Is(err, model.ErrInvalidMove):
		return &httpError{http.StatusConflict, APIError{CodeInvalidMove, "Move not allowed"}}
	case errors.Is(err, model.ErrInvalidClaim):
		return &httpError{http.StatusConflict, APIError{CodeInvalidClaim, "Board does not satisfy the win condition"}}
	case errors.Is(err, model.ErrDuplicateClaim):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateClaim, "Round already won"}}
	case errors.Is(err, model.ErrCodeSpaceExhausted):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, "No room codes available, try again"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewRateLimitedError creates a rate limited error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many messages, slow down"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
