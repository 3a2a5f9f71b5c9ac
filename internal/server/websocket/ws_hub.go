package websocket

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/flow"
)

const writeWait = 10 * time.Second

// WsHub fans committed donation states out to the sockets watching each
// session. All connection bookkeeping happens on the Run goroutine.
type WsHub struct {
	Clients    map[string]map[*websocket.Conn]bool
	Broadcast  chan WsMessage
	Register   chan *WsClient
	Unregister chan *WsClient
	Logger     zerolog.Logger
}

// WsClient is one socket watching Session. Initial, when set, is sent as
// soon as the socket is registered.
type WsClient struct {
	Session string
	Conn    *websocket.Conn
	Initial *flow.State
}

type WsMessage struct {
	Type    string      `json:"type"`
	Session string      `json:"session"`
	State   *flow.State `json:"state,omitempty"`
}

func NewWsHub(logger zerolog.Logger) *WsHub {
	return &WsHub{
		Clients:    make(map[string]map[*websocket.Conn]bool),
		Broadcast:  make(chan WsMessage, 100),
		Register:   make(chan *WsClient, 100),
		Unregister: make(chan *WsClient, 100),
		Logger:     logger.With().Str("component", "ws_hub").Logger(),
	}
}

// Run serves the hub until ctx is done, then closes every connection.
func (h *WsHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for session, clients := range h.Clients {
				for conn := range clients {
					conn.Close()
				}
				delete(h.Clients, session)
			}
			return

		case client := <-h.Register:
			if h.Clients[client.Session] == nil {
				h.Clients[client.Session] = make(map[*websocket.Conn]bool)
			}
			h.Clients[client.Session][client.Conn] = true
			if client.Initial != nil {
				h.send(client.Session, client.Conn, WsMessage{Type: "state", Session: client.Session, State: client.Initial})
			}
			h.Logger.Debug().
				Str("session", client.Session).
				Int("connection_count", len(h.Clients[client.Session])).
				Msg("WebSocket client registered")

		case client := <-h.Unregister:
			if clients, ok := h.Clients[client.Session]; ok {
				if _, ok := clients[client.Conn]; ok {
					delete(clients, client.Conn)
					client.Conn.Close()
				}
				if len(clients) == 0 {
					delete(h.Clients, client.Session)
				}
			}

		case message := <-h.Broadcast:
			clients, ok := h.Clients[message.Session]
			if !ok {
				continue
			}
			for conn := range clients {
				h.send(message.Session, conn, message)
			}
		}
	}
}

// send writes one message, dropping the connection if the write fails.
func (h *WsHub) send(session string, conn *websocket.Conn, message WsMessage) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(message); err != nil {
		h.Logger.Err(err).
			Str("session", session).
			Str("type", message.Type).
			Msg("Failed to send WebSocket message")
		conn.Close()
		if clients, ok := h.Clients[session]; ok {
			delete(clients, conn)
			if len(clients) == 0 {
				delete(h.Clients, session)
			}
		}
	}
}

// Publish queues s for the session's sockets. A full queue drops the update;
// the next committed state supersedes it anyway.
func (h *WsHub) Publish(session string, s flow.State) {
	select {
	case h.Broadcast <- WsMessage{Type: "state", Session: session, State: &s}:
	default:
		h.Logger.Warn().Str("session", session).Msg("Broadcast queue full, dropping state update")
	}
}
