package handler

import (
	"prime-research/internal/pkg/logger"
	internalWS "prime-research/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const progressHandlerModule = "PROGRESS_HANDLER"

// ProgressHandler streams pipeline progress over a websocket. The optional
// session_id query parameter limits the stream to one run.
type ProgressHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewProgressHandler(hub *internalWS.Hub, log logger.ILogger) *ProgressHandler {
	return &ProgressHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *ProgressHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/progress", h.ServeWs)
}

func (h *ProgressHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	sessionId := c.Query("session_id")

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info(progressHandlerModule, "Progress stream opened", map[string]interface{}{"session_id": sessionId})
		internalWS.ServeWs(h.hub, conn, sessionId)
		h.logger.Info(progressHandlerModule, "Progress stream closed", map[string]interface{}{"session_id": sessionId})
	})(c)
}
