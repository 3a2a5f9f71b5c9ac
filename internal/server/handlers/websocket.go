package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/server/websocket"
	"github.com/fundbridge/donate/pkg/config"
)

// WebSocketHandler streams committed states of one donation session.
type WebSocketHandler struct {
	driver   FlowDriver
	wsHub    *websocket.WsHub
	upgrader gws.Upgrader
	ping     time.Duration
	logger   zerolog.Logger
}

func NewWebSocketHandler(driver FlowDriver, wsHub *websocket.WsHub, cfg config.WebSocketConfig, logger zerolog.Logger) *WebSocketHandler {
	upgrader := gws.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
	}
	if !cfg.CheckOrigin {
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	ping := cfg.PingPeriod
	if ping <= 0 {
		ping = 30 * time.Second
	}
	return &WebSocketHandler{
		driver:   driver,
		wsHub:    wsHub,
		upgrader: upgrader,
		ping:     ping,
		logger:   logger.With().Str("component", "ws_handler").Logger(),
	}
}

func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	session := c.Param("session")
	state, err := h.driver.Get(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Donation session not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Err(err).Str("session", session).Msg("Failed to upgrade to WebSocket")
		return
	}

	client := &websocket.WsClient{Session: session, Conn: conn, Initial: &state}
	h.wsHub.Register <- client

	go h.readPump(client)
}

// readPump keeps the connection alive and unregisters it once the browser
// goes away. Pings go through WriteControl, which may run alongside the
// hub's writes.
func (h *WebSocketHandler) readPump(client *websocket.WsClient) {
	conn := client.Conn
	done := make(chan struct{})
	defer func() {
		close(done)
		h.wsHub.Unregister <- client
	}()

	wait := 2 * h.ping
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})

	go func() {
		ticker := time.NewTicker(h.ping)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(gws.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if gws.IsUnexpectedCloseError(err, gws.CloseGoingAway, gws.CloseNormalClosure) {
				h.logger.Warn().Err(err).Str("session", client.Session).Msg("Unexpected WebSocket close")
			}
			return
		}
	}
}
