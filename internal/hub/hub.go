// Package hub owns the in-memory connection registry: which users are
// connected, which rooms each connection participates in, and the fan-out
// of payloads to them. It persists nothing and depends on no other
// component; callers inject behaviour through callbacks set at bootstrap.
package hub

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// InboundHandler consumes text frames read from a client connection.
type InboundHandler func(client *Client, raw []byte)

// Hub tracks live connections per user and per room. All index mutations
// are guarded by mu; fan-out iterates a snapshot taken under RLock so a
// concurrent disconnect is skipped rather than raced.
type Hub struct {
	mu         sync.RWMutex
	users      map[uint]map[*Client]bool
	rooms      map[uint]map[*Client]bool
	registered map[*Client]bool

	// onUserOffline fires after the user's last connection is removed.
	// Set once at bootstrap, before any connection is accepted.
	onUserOffline func(userID uint)

	// inbound receives frames from client read pumps. Set once at
	// bootstrap.
	inbound InboundHandler

	log *logrus.Entry
}

// NewHub creates an empty registry.
func NewHub() *Hub {
	return &Hub{
		users:      make(map[uint]map[*Client]bool),
		rooms:      make(map[uint]map[*Client]bool),
		registered: make(map[*Client]bool),
		log:        logrus.WithField("component", "hub"),
	}
}

// SetOnUserOffline installs the last-disconnect callback.
func (h *Hub) SetOnUserOffline(fn func(userID uint)) { h.onUserOffline = fn }

// SetInboundHandler installs the consumer for client frames.
func (h *Hub) SetInboundHandler(fn InboundHandler) { h.inbound = fn }

// Register adds a new connection for userID and returns its Client. The
// caller starts the pumps with Client.Run.
func (h *Hub) Register(conn *websocket.Conn, userID uint) *Client {
	client := newClient(h, conn, userID)

	h.mu.Lock()
	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[*Client]bool)
	}
	h.users[userID][client] = true
	h.registered[client] = true
	h.mu.Unlock()

	h.log.WithFields(logrus.Fields{
		"user_id": userID,
		"conn_id": client.ID(),
	}).Info("Connection registered")
	return client
}

// JoinRoom adds every live connection of userID to the room's set.
// Idempotent: joining a room twice is a no-op.
func (h *Hub) JoinRoom(userID, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.users[userID] {
		if _, ok := h.rooms[roomID]; !ok {
			h.rooms[roomID] = make(map[*Client]bool)
		}
		h.rooms[roomID][client] = true
		client.rooms[roomID] = true
	}
}

// LeaveRoom removes userID's connections from the room's set, pruning the
// room entry when it becomes empty.
func (h *Hub) LeaveRoom(userID, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.users[userID] {
		delete(client.rooms, roomID)
		if roomClients, ok := h.rooms[roomID]; ok {
			delete(roomClients, client)
			if len(roomClients) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

// Unregister removes the connection from the user index and from every
// room it joined. Safe to call more than once; each index removal is
// unconditional so no partial state survives. When the user's last
// connection goes away the offline callback fires.
func (h *Hub) Unregister(client *Client) {
	if client == nil {
		return
	}

	h.mu.Lock()
	if !h.registered[client] {
		h.mu.Unlock()
		return
	}
	delete(h.registered, client)

	userID := client.userID
	for roomID := range client.rooms {
		if roomClients, ok := h.rooms[roomID]; ok {
			delete(roomClients, client)
			if len(roomClients) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	client.rooms = make(map[uint]bool)

	lastConnection := false
	if userClients, ok := h.users[userID]; ok {
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.users, userID)
			lastConnection = true
		}
	}
	offline := h.onUserOffline
	h.mu.Unlock()

	client.closeSend()

	h.log.WithFields(logrus.Fields{
		"user_id": userID,
		"conn_id": client.ID(),
	}).Info("Connection unregistered")

	if lastConnection && offline != nil {
		offline(userID)
	}
}

// ResetRoom drops the room's connection index entirely. Used when a room
// is deleted; the connections themselves stay registered.
func (h *Hub) ResetRoom(roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.rooms[roomID] {
		delete(client.rooms, roomID)
	}
	delete(h.rooms, roomID)
}

// SendToUser delivers the payload to all live connections of userID,
// best-effort. A connection that cannot accept the payload is dropped from
// the registry without blocking delivery to the rest.
func (h *Hub) SendToUser(userID uint, payload []byte) {
	if payload == nil {
		return
	}
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.users[userID]))
	for client := range h.users[userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if !client.enqueue(payload) {
			h.dropSlowClient(client)
		}
	}
}

// BroadcastToRoom delivers the payload to every connection in the room,
// skipping connections owned by excludeUserID (0 excludes nobody). The
// recipient list is a snapshot; connections that disconnect mid-broadcast
// are simply missed.
func (h *Hub) BroadcastToRoom(roomID uint, payload []byte, excludeUserID uint) {
	if payload == nil {
		return
	}
	h.mu.RLock()
	roomClients := h.rooms[roomID]
	targets := make([]*Client, 0, len(roomClients))
	for client := range roomClients {
		if excludeUserID != 0 && client.userID == excludeUserID {
			continue
		}
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if !client.enqueue(payload) {
			h.dropSlowClient(client)
		}
	}
}

// BroadcastAll delivers the payload to every registered connection.
// Presence updates go through here.
func (h *Hub) BroadcastAll(payload []byte) {
	if payload == nil {
		return
	}
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.registered))
	for client := range h.registered {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if !client.enqueue(payload) {
			h.dropSlowClient(client)
		}
	}
}

func (h *Hub) dropSlowClient(client *Client) {
	h.log.WithFields(logrus.Fields{
		"user_id": client.userID,
		"conn_id": client.ID(),
	}).Warn("Client send buffer full or closed, dropping connection")
	h.Unregister(client)
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// RoomSize returns the number of live connections in the room.
func (h *Hub) RoomSize(roomID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// OnlineUsersInRoom returns the set of user IDs with a live connection in
// the room.
func (h *Hub) OnlineUsersInRoom(roomID uint) map[uint]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	online := make(map[uint]bool)
	for client := range h.rooms[roomID] {
		online[client.userID] = true
	}
	return online
}

// ConnectionCount returns the total number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.registered)
}

// CloseAll unregisters every connection. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.registered))
	for client := range h.registered {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.Unregister(client)
		client.closeConn()
	}
}

func (h *Hub) handleInbound(client *Client, raw []byte) {
	if h.inbound == nil {
		h.log.Warn("Inbound frame dropped, no handler installed")
		return
	}
	h.inbound(client, raw)
}
