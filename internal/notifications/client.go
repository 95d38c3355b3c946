package notifications

import (
	"log"
	"time"

	"commune/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong before the connection is presumed
	// dead.
	pongWait = 60 * time.Second

	// Ping interval. Must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// The notification channel is push-only, so inbound frames should only
	// ever be control traffic. Anything larger is a misbehaving client.
	maxMessageSize = 16384
)

// Client is one websocket connection of one user. A user can hold several at
// once (phone plus a few browser tabs); the hub fans each notification out to
// all of them.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID uint

	// Send carries serialized notification payloads to WritePump.
	Send chan []byte
}

// NewClient wraps an accepted websocket connection.
func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 256),
	}
}

// ReadPump drains the connection until it errors, keeping the pong deadline
// fresh. Clients have nothing to say on this channel; the read loop exists to
// detect disconnects and unregister promptly.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { _ = c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("notification read loop (user %d): %v", c.UserID, err)
			}
			return
		}
	}
}

// WritePump writes queued notifications and periodic pings to the peer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues a payload without blocking the hub. When the client's buffer
// is full, the payload is dropped and a marker frame is queued so the client
// knows to re-fetch its notification list.
func (c *Client) TrySend(payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.Send <- payload:
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "full").Inc()
		log.Printf("notification buffer full, dropping payload (user %d)", c.UserID)

		dropNotice := []byte(`{"type":"notifications_dropped","payload":{"reason":"buffer_full"}}`)
		select {
		case c.Send <- dropNotice:
		default:
		}
	}
}
