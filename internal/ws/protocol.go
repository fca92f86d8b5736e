package ws

import (
	"encoding/json"
	"time"

	"github.com/openmahjong/lounge-go/internal/model"
)

// RequestType identifies a client-to-server request
type RequestType string

const (
	RequestCreateRoom       RequestType = "create-room"
	RequestJoinRoom         RequestType = "join-room"
	RequestLeaveRoom        RequestType = "leave-room"
	RequestStateUpdate      RequestType = "state-update"
	RequestGameState        RequestType = "request-game-state"
	RequestCharlestonReady  RequestType = "charleston-player-ready"
	RequestCharlestonStatus RequestType = "charleston-request-status"
	RequestTurnStartGame    RequestType = "turn-start-game"
	RequestTurnAdvance      RequestType = "turn-advance"
	RequestTurnStatus       RequestType = "turn-request-status"
	RequestDeclareMahjong   RequestType = "declare-mahjong"
	RequestSyncState        RequestType = "sync-game-state"
	RequestPing             RequestType = "ping"
)

// ClientMessage is the inbound envelope. RequestID correlates the
// single ack the sender receives; the payload shape depends on Type.
type ClientMessage struct {
	Type      RequestType     `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage is the outbound envelope for both acks and broadcasts.
// Acks carry the RequestID of the request they answer; broadcasts do not.
type ServerMessage struct {
	Type      string         `json:"type"`
	RequestID string         `json:"requestId,omitempty"`
	RoomID    model.RoomID   `json:"roomId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   any            `json:"payload,omitempty"`
	Error     *ErrorResponse `json:"error,omitempty"`
}

const (
	// Ack envelope types; broadcast types reuse model.EventType values
	MessageAck   = "ack"
	MessageError = "error"
	MessagePong  = "pong"
)

// ErrorResponse is the failure half of an acknowledgment
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Request payloads

type CreateRoomRequest struct {
	HostName string             `json:"hostName"`
	Config   *RoomConfigRequest `json:"config,omitempty"`
}

// RoomConfigRequest carries optional overrides of the default config
type RoomConfigRequest struct {
	MaxPlayers      *int            `json:"maxPlayers,omitempty"`
	IsPrivate       *bool           `json:"isPrivate,omitempty"`
	RoomName        *string         `json:"roomName,omitempty"`
	GameMode        *model.GameMode `json:"gameMode,omitempty"`
	AllowSpectators *bool           `json:"allowSpectators,omitempty"`
}

type JoinRoomRequest struct {
	RoomID     model.RoomID `json:"roomId"`
	PlayerName string       `json:"playerName"`
}

type LeaveRoomRequest struct {
	RoomID model.RoomID `json:"roomId"`
}

type StateUpdateRequest struct {
	RoomID model.RoomID      `json:"roomId"`
	Update model.StateUpdate `json:"update"`
}

type GameStateRequest struct {
	RoomID model.RoomID `json:"roomId"`
}

type SyncStateRequest struct {
	RoomID model.RoomID     `json:"roomId"`
	State  *model.GameState `json:"state"`
}

type CharlestonReadyRequest struct {
	RoomID        model.RoomID          `json:"roomId"`
	SelectedTiles []model.Tile          `json:"selectedTiles"`
	Phase         model.CharlestonPhase `json:"phase,omitempty"`
}

type CharlestonStatusRequest struct {
	RoomID model.RoomID `json:"roomId"`
}

type TurnStartGameRequest struct {
	RoomID      model.RoomID     `json:"roomId"`
	FirstPlayer model.PlayerID   `json:"firstPlayer"`
	TurnOrder   []model.PlayerID `json:"turnOrder"`
}

type TurnAdvanceRequest struct {
	RoomID          model.RoomID   `json:"roomId"`
	CurrentPlayerID model.PlayerID `json:"currentPlayerId"`
	NextPlayerID    model.PlayerID `json:"nextPlayerId"`
	TurnNumber      int            `json:"turnNumber"`
}

type TurnStatusRequest struct {
	RoomID model.RoomID `json:"roomId"`
}

type DeclareMahjongRequest struct {
	RoomID  model.RoomID `json:"roomId"`
	Hand    []model.Tile `json:"hand"`
	Pattern string       `json:"pattern"`
}

// PingRequest echoes its timestamp back for client-side RTT measurement
type PingRequest struct {
	Timestamp int64 `json:"timestamp"`
}

type PongResponse struct {
	Timestamp int64 `json:"timestamp"`
}
