package notifications

import (
	"log/slog"
	"time"

	"agora/internal/middleware"
	"agora/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send pings and close frames.
	maxMessageSize = 1024

	sendBufferSize = 64
)

var dropNotice = []byte(`{"type":"messages_dropped","payload":{"reason":"buffer_full"}}`)

// Client is one websocket connection owned by the Hub.
type Client struct {
	hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID uint
}

func newClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// ReadPump drains the connection until it closes, then unregisters the client.
// Inbound frames are discarded; messages are sent over HTTP.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Warn("websocket read failed",
					slog.Uint64("user_id", uint64(c.UserID)),
					slog.String("error", err.Error()),
				)
			}
			return
		}
	}
}

// WritePump forwards queued payloads to the connection and keeps it alive
// with pings. It returns when Send is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues message without blocking. When the buffer is full the
// message is dropped and the client is told so it can re-fetch.
func (c *Client) TrySend(message []byte) {
	defer func() {
		if r := recover(); r != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "full").Inc()
		select {
		case c.Send <- dropNotice:
		default:
		}
	}
}
