package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"commune/internal/observability"
)

// WebsocketHandler upgrades GET /api/ws and streams notification events to
// the authenticated user until the connection drops.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok || userID == 0 {
			conn.Close()
			return
		}

		if s.hub == nil {
			observability.GlobalLogger.Warn("websocket rejected: notification hub unavailable",
				slog.Uint64("user_id", uint64(userID)))
			conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			observability.GlobalLogger.Warn("websocket registration refused",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()))
			conn.Close()
			return
		}
		go client.WritePump()
		client.ReadPump()
	})
}
