package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openmahjong/lounge-go/internal/dependencies/clock"
	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/services/gamestate"
	"github.com/openmahjong/lounge-go/internal/services/registry"
	"github.com/openmahjong/lounge-go/internal/services/turn"
)

// DefaultCharlestonTimeLimit force-advances a stuck exchange sub-phase
const DefaultCharlestonTimeLimit = 120 * time.Second

// Gateway is the per-connection request handler. It binds identity to
// the connection, enforces membership and current-actor guards, maps
// requests onto the registry, store and coordinator, and fans resulting
// deltas out to room members. The sender always receives exactly one
// correlated ack per request, distinct from any broadcast.
type Gateway struct {
	registry    registry.ControllerInterface
	store       gamestate.StoreInterface
	coordinator turn.CoordinatorInterface
	hub         *Hub
	clock       clock.Clock
	logger      *slog.Logger

	charlestonLimit time.Duration
	timersMu        sync.Mutex
	timers          map[model.RoomID]*time.Timer

	upgrader websocket.Upgrader
}

// NewGateway creates a new session Gateway
func NewGateway(
	reg registry.ControllerInterface,
	store gamestate.StoreInterface,
	coordinator turn.CoordinatorInterface,
	hub *Hub,
	clk clock.Clock,
	charlestonLimit time.Duration,
	logger *slog.Logger,
) *Gateway {
	if charlestonLimit <= 0 {
		charlestonLimit = DefaultCharlestonTimeLimit
	}
	return &Gateway{
		registry:        reg,
		store:           store,
		coordinator:     coordinator,
		hub:             hub,
		clock:           clk,
		logger:          logger.With(slog.String("component", "gateway")),
		charlestonLimit: charlestonLimit,
		timers:          make(map[model.RoomID]*time.Timer),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and starts its pumps
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(g.hub, conn)
	g.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(g, g.logger)
}

// Run consumes hub disconnect notifications and drives the leave
// cascade for each dropped connection.
func (g *Gateway) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-g.hub.Disconnects:
			g.handleDisconnect(ctx, client)
		}
	}
}

// HandleMessage dispatches one decoded request. Implements MessageHandler.
func (g *Gateway) HandleMessage(client *Client, msg *ClientMessage) {
	ctx := context.Background()

	switch msg.Type {
	case RequestPing:
		g.handlePing(client, msg)
	case RequestCreateRoom:
		g.handleCreateRoom(ctx, client, msg)
	case RequestJoinRoom:
		g.handleJoinRoom(ctx, client, msg)
	case RequestLeaveRoom:
		g.handleLeaveRoom(ctx, client, msg)
	case RequestStateUpdate:
		g.handleStateUpdate(ctx, client, msg)
	case RequestGameState:
		g.handleGameState(ctx, client, msg)
	case RequestSyncState:
		g.handleSyncState(ctx, client, msg)
	case RequestCharlestonReady:
		g.handleCharlestonReady(ctx, client, msg)
	case RequestCharlestonStatus:
		g.handleCharlestonStatus(ctx, client, msg)
	case RequestTurnStartGame:
		g.handleTurnStartGame(ctx, client, msg)
	case RequestTurnAdvance:
		g.handleTurnAdvance(ctx, client, msg)
	case RequestTurnStatus:
		g.handleTurnStatus(ctx, client, msg)
	case RequestDeclareMahjong:
		g.handleDeclareMahjong(ctx, client, msg)
	default:
		g.nack(client, msg, "", fmt.Errorf("%w: request %q", model.ErrUnknownUpdateType, msg.Type))
	}
}

// seatedRoom resolves the targeted room and requires the caller to be a
// seated player in it.
func (g *Gateway) seatedRoom(ctx context.Context, client *Client, roomID model.RoomID) (*model.Room, error) {
	room, err := g.registry.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.GetPlayer(client.PlayerID) == nil {
		return nil, fmt.Errorf("%w: %s is not seated in room %s", model.ErrNotInRoom, client.PlayerID, roomID)
	}
	return room, nil
}

// memberRoom resolves the targeted room and requires the caller to be a
// member, seated or spectating. Used for read-only requests.
func (g *Gateway) memberRoom(ctx context.Context, client *Client, roomID model.RoomID) (*model.Room, error) {
	room, err := g.registry.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasMember(client.PlayerID) {
		return nil, fmt.Errorf("%w: %s is not a member of room %s", model.ErrNotInRoom, client.PlayerID, roomID)
	}
	return room, nil
}

func (g *Gateway) ack(client *Client, msg *ClientMessage, roomID model.RoomID, payload any) {
	client.Send(ServerMessage{
		Type:      MessageAck,
		RequestID: msg.RequestID,
		RoomID:    roomID,
		Timestamp: g.clock.Now(),
		Payload:   payload,
	})
}

func (g *Gateway) nack(client *Client, msg *ClientMessage, roomID model.RoomID, err error) {
	client.Send(ServerMessage{
		Type:      MessageError,
		RequestID: msg.RequestID,
		RoomID:    roomID,
		Timestamp: g.clock.Now(),
		Error: &ErrorResponse{
			Kind:    errKind(err),
			Message: err.Error(),
		},
	})
}

func (g *Gateway) broadcast(roomID model.RoomID, event model.EventType, payload any) {
	g.hub.BroadcastRoom(roomID, ServerMessage{
		Type:      string(event),
		RoomID:    roomID,
		Timestamp: g.clock.Now(),
		Payload:   payload,
	})
}

func decode[T any](msg *ClientMessage) (*T, error) {
	var req T
	if len(msg.Payload) == 0 {
		return nil, fmt.Errorf("%w: payload missing", model.ErrValidation)
	}
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	return &req, nil
}

// errKind maps sentinel errors onto the wire-level error taxonomy
func errKind(err error) string {
	switch {
	case errors.Is(err, model.ErrRoomNotFound),
		errors.Is(err, model.ErrPlayerNotFound),
		errors.Is(err, model.ErrGameStateNotFound),
		errors.Is(err, model.ErrPatternNotFound):
		return "not-found"
	case errors.Is(err, model.ErrRoomFull):
		return "room-full"
	case errors.Is(err, model.ErrQuotaExceeded):
		return "quota-exceeded"
	case errors.Is(err, model.ErrAlreadyInRoom):
		return "already-in-room"
	case errors.Is(err, model.ErrNotInRoom):
		return "not-in-room"
	case errors.Is(err, model.ErrNotHost):
		return "not-host"
	case errors.Is(err, model.ErrNotYourTurn):
		return "not-your-turn"
	case errors.Is(err, model.ErrInvalidTransition):
		return "invalid-transition"
	case errors.Is(err, model.ErrPhase):
		return "phase"
	case errors.Is(err, model.ErrUnknownUpdateType):
		return "unknown-type"
	case errors.Is(err, model.ErrValidation):
		return "validation"
	}
	return "internal"
}
