package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/synscript/synscript/internal/server/rbac"
	"github.com/synscript/synscript/internal/server/realtime"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The token check has already run; cross-origin pages cannot obtain one.
	CheckOrigin: func(*http.Request) bool { return true },
}

// clientFrame is what clients may send upstream: presence intent only.
type clientFrame struct {
	Type string `json:"type"` // track or untrack
}

// parseChannels narrows the subscription to the requested concerns; an
// absent or empty parameter means all of them.
func parseChannels(raw string) map[string]bool {
	all := map[string]bool{
		realtime.ConcernSources:  true,
		realtime.ConcernMembers:  true,
		realtime.ConcernPresence: true,
	}
	if raw == "" {
		return all
	}
	selected := make(map[string]bool)
	for _, c := range strings.Split(raw, ",") {
		c = strings.TrimSpace(c)
		if all[c] {
			selected[c] = true
		}
	}
	if len(selected) == 0 {
		return all
	}
	return selected
}

// handleEvents upgrades the connection and relays the vault's change and
// presence events. The client's role is checked once at upgrade; a
// revoked member keeps the stream only until reconnect, which mirrors
// the bounded staleness of the role cache.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	vaultID, claims, ok := s.requireRole(w, r, rbac.CanRead)
	if !ok {
		return
	}

	concerns := parseChannels(r.URL.Query().Get("channels"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "websocket upgrade failed", "vault_id", vaultID, "error", err)
		return
	}

	c := &wsClient{
		server:   s,
		conn:     conn,
		vaultID:  vaultID,
		userID:   claims.UserID,
		email:    claims.Email,
		concerns: concerns,
		sub:      s.hub.Subscribe(vaultID),
		direct:   make(chan realtime.Message, 4),
	}

	go c.writeLoop()
	c.readLoop()
}

type wsClient struct {
	server   *Server
	conn     *websocket.Conn
	vaultID  string
	userID   string
	email    string
	concerns map[string]bool
	sub      *realtime.Subscription
	direct   chan realtime.Message
	tracked  bool
}

// readLoop consumes presence frames and pongs until the connection drops,
// then tears everything down. Closing the subscription ends writeLoop.
func (c *wsClient) readLoop() {
	defer func() {
		if c.tracked {
			c.server.presence.Untrack(c.vaultID, c.userID)
		}
		c.server.hub.Unsubscribe(c.sub)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame clientFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case "track":
			if !c.tracked {
				c.server.presence.Track(c.vaultID, c.userID, c.email)
				c.tracked = true
			}
			// answer with the current room state
			c.direct <- realtime.Message{
				Concern: realtime.ConcernPresence,
				Payload: realtime.PresenceEvent{
					Type:    "sync",
					Members: c.server.presence.Snapshot(c.vaultID),
				},
			}
		case "untrack":
			if c.tracked {
				c.server.presence.Untrack(c.vaultID, c.userID)
				c.tracked = false
			}
		}
	}
}

// writeLoop forwards hub traffic the client asked for and keeps the
// connection alive with pings.
func (c *wsClient) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, open := <-c.sub.C:
			if !open {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			if !c.concerns[msg.Concern] {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case msg := <-c.direct:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
