package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openmahjong/lounge-go/internal/model"
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
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodePlayerNotFound    = "PLAYER_NOT_FOUND"
	CodeGameStateNotFound = "GAME_STATE_NOT_FOUND"
	CodePatternNotFound   = "PATTERN_NOT_FOUND"
	CodeRoomFull          = "ROOM_FULL"
	CodeQuotaExceeded     = "QUOTA_EXCEEDED"
	CodeAlreadyInRoom     = "ALREADY_IN_ROOM"
	CodeNotInRoom         = "NOT_IN_ROOM"
	CodeNotHost           = "NOT_HOST"
	CodeNotYourTurn       = "NOT_YOUR_TURN"
	CodePhase             = "PHASE_ERROR"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeUnknownUpdateType = "UNKNOWN_UPDATE_TYPE"
	CodeInternalError     = "INTERNAL_ERROR"
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

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrGameStateNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameStateNotFound, "Game state not found"}}
	case errors.Is(err, model.ErrPatternNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePatternNotFound, "Pattern not found"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrQuotaExceeded):
		return &httpError{http.StatusConflict, APIError{CodeQuotaExceeded, "Hosted room quota exceeded"}}
	case errors.Is(err, model.ErrAlreadyInRoom):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInRoom, "Already in a room"}}
	case errors.Is(err, model.ErrNotInRoom):
		return &httpError{http.StatusForbidden, APIError{CodeNotInRoom, "Not a member of this room"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{CodeNotHost, "Only the host can perform this action"}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrInvalidTransition):
		return &httpError{http.StatusConflict, APIError{CodeInvalidTransition, "Illegal phase transition"}}
	case errors.Is(err, model.ErrPhase):
		return &httpError{http.StatusConflict, APIError{CodePhase, "Operation not allowed in current phase"}}
	case errors.Is(err, model.ErrUnknownUpdateType):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownUpdateType, "Unknown update type"}}
	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
