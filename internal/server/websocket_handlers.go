package server

import (
	"log/slog"

	"agora/internal/featureflags"
	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketUpgrade admits authenticated upgrade requests when realtime
// delivery is running and enabled for the caller.
func (s *Server) WebsocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.NewError(fiber.StatusUpgradeRequired, "WebSocket upgrade required"))
	}
	if s.hub == nil {
		return models.RespondWithError(c, fiber.NewError(fiber.StatusServiceUnavailable, "Realtime delivery unavailable"))
	}
	if !s.featureFlags.Enabled(featureflags.RealtimeMessages, callerID(c)) {
		return models.RespondWithError(c, models.NewForbiddenError("Realtime messages are disabled"))
	}
	return c.Next()
}

// WebsocketHandler streams direct messages addressed to the caller. The
// socket is receive-only; sending goes through POST /api/messages/:userId.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			// only connection limits fail here
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
			_ = conn.Close()
			return
		}

		middleware.Logger.Info("websocket connected", slog.Uint64("user_id", uint64(userID)))
		go client.WritePump()
		client.ReadPump()
		middleware.Logger.Info("websocket disconnected", slog.Uint64("user_id", uint64(userID)))
	})
}
