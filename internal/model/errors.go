package model

import "errors"

// Common errors used across the application. All are synchronous,
// recoverable-by-the-caller failures; validation always precedes
// mutation, so none of them leaves state partially applied.
var (
	// Input validation
	ErrValidation = errors.New("validation failed")

	// Lookup failures
	ErrRoomNotFound      = errors.New("room not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrGameStateNotFound = errors.New("game state not found")

	// Membership
	ErrRoomFull      = errors.New("room is full")
	ErrQuotaExceeded = errors.New("host has too many active rooms")
	ErrAlreadyInRoom = errors.New("player is already in a room")
	ErrNotInRoom     = errors.New("player is not in this room")
	ErrNotHost       = errors.New("player is not the host")

	// Phase and turn semantics
	ErrPhase             = errors.New("operation not allowed in current phase")
	ErrInvalidTransition = errors.New("illegal phase transition")
	ErrNotYourTurn       = errors.New("not this player's turn")

	// Mutation protocol
	ErrUnknownUpdateType = errors.New("unknown update type")

	// Scoring
	ErrPatternNotFound = errors.New("pattern not found")
)
