package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Per-connection outbound buffer.
	sendBufferSize = 256
)

// Client is one live websocket connection owned by a single user. It may
// participate in any number of rooms at once (multi-device, multi-tab).
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	userID uint

	// rooms this connection joined; guarded by hub.mu.
	rooms map[uint]bool

	sendMu sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(h *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		id:     uuid.NewString(),
		hub:    h,
		conn:   conn,
		userID: userID,
		rooms:  make(map[uint]bool),
		send:   make(chan []byte, sendBufferSize),
	}
}

// ID returns the connection's identifier, assigned at registration.
func (c *Client) ID() string { return c.id }

// UserID returns the owning user.
func (c *Client) UserID() uint { return c.userID }

// Send delivers a payload to this connection only. Returns false when the
// connection is closed or its buffer is full.
func (c *Client) Send(payload []byte) bool {
	if payload == nil {
		return false
	}
	return c.enqueue(payload)
}

// Run starts the read and write pumps.
func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

// enqueue attempts a non-blocking delivery to the connection's outbound
// buffer. Returns false when the buffer is full or the client is closed;
// the hub drops the connection in that case rather than stalling.
func (c *Client) enqueue(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// closeSend shuts the outbound channel exactly once, which makes the write
// pump exit. Repeat calls are no-ops so Unregister stays idempotent.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) closeConn() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// readPump forwards inbound text frames to the hub's handler. It exits on
// any read error and unregisters the client, which covers transport
// errors, explicit closes and process shutdown alike.
func (c *Client) readPump() {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": c.userID, "conn_id": c.id})
	defer func() {
		c.hub.Unregister(c)
		c.closeConn()
		logCtx.Debug("Read pump exited")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("Websocket read error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.hub.handleInbound(c, message)
	}
}

// writePump drains the send channel into the websocket, pinging on a
// ticker to detect dead peers.
func (c *Client) writePump() {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": c.userID, "conn_id": c.id})
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConn()
		logCtx.Debug("Write pump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logCtx.WithError(err).Warn("Failed to write message to websocket")
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
