package hub

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/upwatch/uplink/internal/auth"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// Outbound buffer per connection. When full, further pushes to this
	// connection are dropped (best-effort delivery).
	sendBufferSize = 256
)

// Conn is the connection surface visible to custom event handlers.
//
// Implemented by [Client]; defined as an interface so handlers can be
// tested against fakes without a live websocket.
type Conn interface {
	// ID returns the process-unique connection id.
	ID() string

	// Identity returns the authenticated principal, or ok=false when the
	// connection has not authenticated yet.
	Identity() (identity auth.Identity, ok bool)

	// Send pushes an event to this connection. Returns false if the
	// payload could not be encoded or the connection is gone or saturated.
	Send(event string, data any) bool
}

// Client is one live websocket connection.
//
// A Client is owned by the hub from registration to disconnect. Its read
// pump processes inbound messages strictly in arrival order; its write
// pump serializes all outbound traffic including keepalive pings.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// identity is set once by a successful authenticate message and read
	// by dashboard handlers and tests.
	mu       sync.RWMutex
	identity auth.Identity
	authed   bool

	// safe-close handling, prevents send-on-closed-channel panics when a
	// broadcast races a disconnect
	closeOnce sync.Once
	closed    atomic.Bool
}

// newClient wraps an upgraded websocket connection.
func newClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// ID returns the process-unique connection id.
func (c *Client) ID() string {
	return c.id
}

// Identity returns the authenticated principal, if any.
func (c *Client) Identity() (auth.Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity, c.authed
}

// setIdentity records the principal resolved for this connection.
func (c *Client) setIdentity(id auth.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = id
	c.authed = true
}

// Send encodes and pushes an event to this connection.
func (c *Client) Send(event string, data any) bool {
	msg, err := encodeEnvelope(event, data)
	if err != nil {
		c.hub.logger.Error("failed to encode outbound event", "event", event, "error", err)
		return false
	}
	return c.safeSend(msg)
}

// safeSend queues raw bytes for the write pump without panicking on a
// closed channel. Returns false if the connection is closed or its buffer
// is full.
func (c *Client) safeSend(msg []byte) (sent bool) {
	// a racing close() can still close the channel between the closed
	// check and the send below
	defer func() {
		if r := recover(); r != nil {
			sent = false
		}
	}()

	if c.closed.Load() {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		// buffer full, drop rather than block the broadcaster
		return false
	}
}

// close shuts the send channel exactly once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.send)
	})
}

// readPump pumps messages from the websocket connection into the hub
// dispatcher. One goroutine per connection; exits on read error and
// triggers full cleanup.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", "conn", c.id, "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.hub.logger.Debug("dropping malformed message", "conn", c.id, "error", err)
			continue
		}

		c.hub.dispatch(c, env)
	}
}

// writePump pumps queued messages to the websocket connection and keeps
// the connection alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
