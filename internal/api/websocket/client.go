package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
)

// Client is one websocket subscriber
type Client struct {
	ID uuid.UUID
	// Session limits delivery to one session; uuid.Nil receives every event
	Session uuid.UUID

	conn *websocket.Conn
	send chan dnc.Event
	hub  *ProgressHub
}

// NewClient creates a client bound to hub
func NewClient(conn *websocket.Conn, hub *ProgressHub, session uuid.UUID) *Client {
	return &Client{
		ID:      uuid.New(),
		Session: session,
		conn:    conn,
		send:    make(chan dnc.Event, hub.config.ClientBufferSize),
		hub:     hub,
	}
}

func (c *Client) accepts(event dnc.Event) bool {
	return c.Session == uuid.Nil || c.Session == event.SessionID
}

// ReadPump drains the connection so control frames are handled, and unregisters
// the client once the peer goes away
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.config.PongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("Progress client read error",
					zap.String("client_id", c.ID.String()),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// WritePump writes queued events as JSON and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.hub.logger.Warn("Failed to write progress event",
					zap.String("client_id", c.ID.String()),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
