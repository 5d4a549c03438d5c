package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrInvalidRoomCode     = errors.New("invalid room code")
	ErrInvalidMode         = errors.New("invalid game mode")
	ErrCodeSpaceExhausted  = errors.New("could not generate a free room code")
	ErrNotInRoom           = errors.New("player is not in room")
	ErrAlreadyInRoom       = errors.New("connection already joined another room")
	ErrStaleConnection     = errors.New("player reconnected on another connection")
	ErrInsufficientPlayers = errors.New("insufficient players to start game")

	// Game errors
	ErrGameNotPlaying = errors.New("no round in progress")
	ErrInvalidMove    = errors.New("invalid move")
	ErrInvalidClaim   = errors.New("board does not satisfy the win condition")
	ErrDuplicateClaim = errors.New("round already won")
	ErrPoolExhausted  = errors.New("every number has been called")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidUser  = errors.New("uid and name are required")
)
