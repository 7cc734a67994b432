package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"agora/internal/middleware"
	"agora/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 12
	maxTotalConns   = 10000
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrUserFull   = errors.New("user connection limit reached")
)

// Hub maps user ids to their open websocket clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
}

func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Name identifies the hub in metrics.
func (h *Hub) Name() string { return "messages" }

// Register adds a connection for userID, enforcing per-user and global limits.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserFull
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// Unregister removes the client and closes its send queue. Safe to call twice.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	close(client.Send)
	h.totalConns--
	observability.WebSocketConnectionsTotal.Dec()
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Send queues message on every connection of userID.
func (h *Hub) Send(userID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userID] {
		c.TrySend(message)
	}
}

// IsOnline reports whether userID has at least one open connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID]) > 0
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// StartWiring forwards everything published through n to local clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, func(channel, payload string) {
		userID, err := ParseUserChannel(channel)
		if err != nil {
			middleware.Logger.Warn("dropping notification", slog.String("error", err.Error()))
			return
		}
		h.Send(userID, []byte(payload))
	})
}

// Shutdown closes every send queue, which makes each WritePump send a
// close frame and hang up.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.conns {
		for client := range clients {
			close(client.Send)
			observability.WebSocketConnectionsTotal.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
