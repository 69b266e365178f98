package live

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 5 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 20 * time.Second
)

// Handler upgrades GET /ws?call=<id> to a WebSocket that streams hub events.
type Handler struct {
	hub          *Hub
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

// NewHandler accepts any origin when allowedOrigins is empty or contains "*".
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}
	return &Handler{
		hub:          hub,
		pingInterval: pingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	sub := h.hub.Subscribe(strings.TrimSpace(r.URL.Query().Get("call")))
	h.hub.logger.Info("live subscriber connected", "subscriber", sub.ID, "call_id", sub.CallID)

	closed := make(chan struct{})
	go h.readLoop(conn, closed)
	h.writeLoop(conn, sub, closed)

	h.hub.Unsubscribe(sub)
	_ = conn.Close()
	h.hub.logger.Info("live subscriber disconnected", "subscriber", sub.ID)
}

// readLoop drains client frames so pongs and close frames are processed.
func (h *Handler) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, sub *Subscription, closed <-chan struct{}) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case evt, ok := <-sub.Events():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
