package service_test

import (
	"encoding/json"
	"sync"
)

// fakeRegistry records every delivery the services hand to the connection
// layer, standing in for the hub.
type fakeRegistry struct {
	mu sync.Mutex

	online map[uint]bool
	joins  [][2]uint // userID, roomID
	leaves [][2]uint
	resets []uint

	roomBroadcasts []roomBroadcast
	userSends      []userSend
	allBroadcasts  [][]byte
}

type roomBroadcast struct {
	roomID  uint
	payload []byte
	exclude uint
}

type userSend struct {
	userID  uint
	payload []byte
}

func newFakeRegistry(onlineUsers ...uint) *fakeRegistry {
	online := make(map[uint]bool, len(onlineUsers))
	for _, id := range onlineUsers {
		online[id] = true
	}
	return &fakeRegistry{online: online}
}

func (r *fakeRegistry) JoinRoom(userID, roomID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joins = append(r.joins, [2]uint{userID, roomID})
}

func (r *fakeRegistry) LeaveRoom(userID, roomID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves = append(r.leaves, [2]uint{userID, roomID})
}

func (r *fakeRegistry) ResetRoom(roomID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, roomID)
}

func (r *fakeRegistry) SendToUser(userID uint, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userSends = append(r.userSends, userSend{userID: userID, payload: payload})
}

func (r *fakeRegistry) BroadcastToRoom(roomID uint, payload []byte, excludeUserID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roomBroadcasts = append(r.roomBroadcasts, roomBroadcast{roomID: roomID, payload: payload, exclude: excludeUserID})
}

func (r *fakeRegistry) BroadcastAll(payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allBroadcasts = append(r.allBroadcasts, payload)
}

func (r *fakeRegistry) IsOnline(userID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.online[userID]
}

func (r *fakeRegistry) OnlineUsersInRoom(roomID uint) map[uint]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint]bool, len(r.online))
	for id, ok := range r.online {
		if ok {
			out[id] = true
		}
	}
	return out
}

// decodePayload unmarshals an envelope for assertions.
func decodePayload(payload []byte) map[string]interface{} {
	var m map[string]interface{}
	_ = json.Unmarshal(payload, &m)
	return m
}

// broadcastTypes lists the envelope type of each room broadcast in order.
func (r *fakeRegistry) broadcastTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.roomBroadcasts))
	for _, b := range r.roomBroadcasts {
		types = append(types, decodePayload(b.payload)["type"].(string))
	}
	return types
}
