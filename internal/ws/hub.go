package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/openmahjong/lounge-go/internal/model"
)

// Hub tracks live connections and their room subscriptions and fans
// messages out to them. Register/unregister flow through channels so
// connection churn serializes through Run; sends take the read lock only.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	players map[model.PlayerID]*Client
	rooms   map[model.RoomID]map[string]*Client

	register   chan *Client
	unregister chan *Client

	// Disconnected clients surface here for the gateway's leave cascade
	Disconnects chan *Client

	logger *slog.Logger
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		players:     make(map[model.PlayerID]*Client),
		rooms:       make(map[model.RoomID]map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		Disconnects: make(chan *Client, 64),
		logger:      logger.With(slog.String("component", "ws-hub")),
	}
}

// Run processes connection churn until the context is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register announces a new connection to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a connection; the gateway is notified via
// Disconnects so it can run the leave cascade.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.id] = client
	h.players[client.PlayerID] = client

	h.logger.Debug("client connected",
		slog.String("client_id", client.id),
		slog.String("player_id", string(client.PlayerID)),
	)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.id)
	if h.players[client.PlayerID] == client {
		delete(h.players, client.PlayerID)
	}
	for roomID, members := range h.rooms {
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	close(client.send)
	h.mu.Unlock()

	h.logger.Debug("client disconnected",
		slog.String("client_id", client.id),
		slog.String("player_id", string(client.PlayerID)),
	)

	select {
	case h.Disconnects <- client:
	default:
		h.logger.Warn("disconnect queue full, dropping cascade",
			slog.String("player_id", string(client.PlayerID)))
	}
}

// Subscribe adds a client to a room's broadcast set
func (h *Hub) Subscribe(client *Client, roomID model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][client.id] = client
}

// Unsubscribe removes a client from a room's broadcast set
func (h *Hub) Unsubscribe(client *Client, roomID model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[roomID]; ok {
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// DropRoom removes a room's entire broadcast set
func (h *Hub) DropRoom(roomID model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, roomID)
}

// BroadcastRoom sends a message to every subscriber of a room
func (h *Hub) BroadcastRoom(roomID model.RoomID, msg ServerMessage) {
	h.broadcastRoomExcept(roomID, msg, "")
}

// BroadcastRoomExcept sends to every room subscriber but one player,
// used for game-state-changed where the originator already got an ack.
func (h *Hub) BroadcastRoomExcept(roomID model.RoomID, msg ServerMessage, except model.PlayerID) {
	h.broadcastRoomExcept(roomID, msg, except)
}

func (h *Hub) broadcastRoomExcept(roomID model.RoomID, msg ServerMessage, except model.PlayerID) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.rooms[roomID] {
		if except != "" && client.PlayerID == except {
			continue
		}
		client.enqueue(data, h.logger)
	}
}

// SendToPlayer delivers a message to one player's connection, if live
func (h *Hub) SendToPlayer(playerID model.PlayerID, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal direct send", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if client, ok := h.players[playerID]; ok {
		client.enqueue(data, h.logger)
	}
}

// BroadcastAll sends a message to every live connection, used for the
// global room-list refresh.
func (h *Hub) BroadcastAll(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal global broadcast", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.enqueue(data, h.logger)
	}
}

// RoomSubscribers returns the player IDs currently subscribed to a room
func (h *Hub) RoomSubscribers(roomID model.RoomID) []model.PlayerID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]model.PlayerID, 0, len(h.rooms[roomID]))
	for _, client := range h.rooms[roomID] {
		ids = append(ids, client.PlayerID)
	}
	return ids
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		close(client.send)
		client.conn.Close()
		delete(h.clients, id)
	}
	h.players = make(map[model.PlayerID]*Client)
	h.rooms = make(map[model.RoomID]map[string]*Client)
}
