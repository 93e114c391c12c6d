package service

import "context"

// Registry is the connection-registry surface the services depend on. It
// is implemented by *hub.Hub; tests substitute a recorder.
type Registry interface {
	JoinRoom(userID, roomID uint)
	LeaveRoom(userID, roomID uint)
	ResetRoom(roomID uint)
	SendToUser(userID uint, payload []byte)
	BroadcastToRoom(roomID uint, payload []byte, excludeUserID uint)
	BroadcastAll(payload []byte)
	IsOnline(userID uint) bool
	OnlineUsersInRoom(roomID uint) map[uint]bool
}

// EventPublisher is the fire-and-forget cross-subsystem event bus. A
// failed publish is logged by the implementation and never surfaced to the
// operation that triggered it.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload interface{})
}
