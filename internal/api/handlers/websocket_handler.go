package handlers

import (
	"net/http"
	"net/url"
	"time"

	"gaming-ops-portal/internal/dashboard"
	"gaming-ops-portal/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// pongWait is how long a connection may stay silent. The page pings
	// every 20 seconds.
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	writeWait  = 10 * time.Second
)

type WebSocketHandler struct {
	*Portal
	Hub *socket.Hub
	// Origins allowed besides the portal's own host.
	Origins []string
}

func (h *WebSocketHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			if u.Host == r.Host {
				return true
			}
			for _, o := range h.Origins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
}

// ServeWs upgrades a board page's connection and holds the board's
// listeners until it closes. Updates for the viewer arrive through the hub.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	v := mustViewer(c)
	b, ok := dashboard.Lookup(c.Query("board"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown board"})
		return
	}
	if !b.Allowed(v.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	up := h.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	client := socket.NewClient(uuid.NewString(), v.ID, b.Name)
	h.Hub.Register(client)
	if err := h.Feed.Start(b, v); err != nil {
		h.Log.Error().Err(err).Str("board", b.Name).Str("user", v.ID).Msg("start board listeners")
	} else {
		defer h.Feed.Stop(b, v)
	}

	go h.writePump(conn, client)
	h.readPump(conn, client)
}

// readPump keeps the read deadline fresh while the page pings and returns
// once the connection goes away.
func (h *WebSocketHandler) readPump(conn *websocket.Conn, client *socket.Client) {
	defer func() {
		h.Hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Warn().Err(err).Str("client", client.ID).Msg("websocket closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// writePump is the only writer on conn.
func (h *WebSocketHandler) writePump(conn *websocket.Conn, client *socket.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
