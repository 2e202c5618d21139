package handler

import (
	"net/http"

	"github.com/hoa-manager/hoa-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler streams report, generation and bill events to dashboards
type WebSocketHandler struct {
	hub      *websocket.Hub
	origins  map[string]bool
	upgrader ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler that accepts browsers from allowedOrigins
func NewWebSocketHandler(hub *websocket.Hub, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:     hub,
		origins: make(map[string]bool, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		h.origins[origin] = true
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin admits non-browser clients and the configured CORS origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.origins[origin] {
		return true
	}
	log.Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles GET /ws?entities=report_generation,recurring_bill.
// Without the entities parameter the client receives every event.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	entities, err := websocket.ParseEntities(c.QueryParam("entities"))
	if err != nil {
		return NewValidationError(c, "Invalid entities", []ValidationError{
			{Field: "entities", Message: err.Error()},
		})
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, h.hub, entities)
	h.hub.Register(client)

	log.Info().
		Str("client_id", client.ID()).
		Interface("entities", entities).
		Int("clients", h.hub.ClientCount()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}
