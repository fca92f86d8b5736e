package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/openmahjong/lounge-go/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendQueueSize  = 256
)

// MessageHandler processes one decoded inbound request
type MessageHandler interface {
	HandleMessage(client *Client, msg *ClientMessage)
}

// Client is one live websocket connection. PlayerID is bound at
// connection time; inbound payloads never override it.
type Client struct {
	id       string
	PlayerID model.PlayerID
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
}

// NewClient wraps an upgraded connection. The player identity is minted
// server-side per connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:       uuid.NewString(),
		PlayerID: model.PlayerID(uuid.NewString()),
		conn:     conn,
		send:     make(chan []byte, sendQueueSize),
		hub:      hub,
	}
}

// ReadPump decodes inbound frames and hands them to the handler.
// Runs until the connection drops, then unregisters from the hub.
func (c *Client) ReadPump(handler MessageHandler, logger *slog.Logger) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read failed",
					slog.String("player_id", string(c.PlayerID)),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		handler.HandleMessage(c, &msg)
	}
}

// WritePump drains the send queue onto the wire and keeps the
// connection alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send marshals and queues a message for this connection
func (c *Client) Send(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// enqueue queues pre-marshalled bytes, dropping when the client cannot
// keep up rather than blocking the broadcast path.
func (c *Client) enqueue(data []byte, logger *slog.Logger) {
	select {
	case c.send <- data:
	default:
		logger.Warn("send queue full, dropping message",
			slog.String("player_id", string(c.PlayerID)))
	}
}
