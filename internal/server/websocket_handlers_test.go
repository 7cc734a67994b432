package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"agora/internal/notifications"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen serves the app on a random local port for clients that need a
// real connection.
func (e *testEnv) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = e.app.Listener(ln) }()
	t.Cleanup(func() { _ = e.app.ShutdownWithTimeout(time.Second) })
	return ln.Addr().String()
}

func dialWS(t *testing.T, addr, token string) (*gorillaws.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return gorillaws.DefaultDialer.Dial("ws://"+addr+"/api/ws", header)
}

func TestWebsocket_DeliversDirectMessages(t *testing.T) {
	env := setupServer(t, true)
	require.NoError(t, env.srv.hub.StartWiring(env.srv.shutdownCtx, env.srv.notifier))
	bob, bobToken := env.createUser(t, "bob")
	_, aliceToken := env.createUser(t, "alice")
	addr := env.listen(t)

	conn, _, err := dialWS(t, addr, bobToken)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	assert.Eventually(t, func() bool { return env.srv.hub.IsOnline(bob.ID) }, 2*time.Second, 10*time.Millisecond)

	sent := env.do(t, http.MethodPost, fmt.Sprintf("/api/messages/%d", bob.ID), aliceToken, map[string]string{"content": "ping"})
	require.Equal(t, http.StatusCreated, sent.Status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type    string `json:"type"`
		Payload struct {
			Content    string `json:"content"`
			ReceiverID uint   `json:"receiver_id"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, notifications.EventMessage, event.Type)
	assert.Equal(t, "ping", event.Payload.Content)
	assert.Equal(t, bob.ID, event.Payload.ReceiverID)
}

func TestWebsocket_Rejections(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		env := setupServer(t, true)
		addr := env.listen(t)
		_, resp, err := dialWS(t, addr, "")
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("no redis", func(t *testing.T) {
		env := setupServer(t, false)
		_, token := env.createUser(t, "bob")
		addr := env.listen(t)
		_, resp, err := dialWS(t, addr, token)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("plain request", func(t *testing.T) {
		env := setupServer(t, true)
		_, token := env.createUser(t, "bob")
		resp := env.do(t, http.MethodGet, "/api/ws", token, nil)
		assert.Equal(t, http.StatusUpgradeRequired, resp.Status)
	})

	t.Run("flag off", func(t *testing.T) {
		env := setupServer(t, true)
		env.srv.featureFlags = nil
		_, token := env.createUser(t, "bob")
		addr := env.listen(t)
		_, resp, err := dialWS(t, addr, token)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
