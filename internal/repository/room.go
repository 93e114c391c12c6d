package repository

import (
	"context"
	"time"

	"realtime-chat/internal/domain"
)

// RoomRepository defines storage for rooms. Implementations return
// ErrRoomNotFound for unknown IDs.
type RoomRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Room, error)
	Save(ctx context.Context, room *domain.Room) error

	// TouchActivity moves the room's last-activity pointer forward. It is
	// called on every accepted message.
	TouchActivity(ctx context.Context, roomID uint, at time.Time) error

	// FindByIDs loads the given rooms, skipping unknown IDs.
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Room, error)

	// Delete hard-deletes the room. Message and membership cascade is the
	// caller's responsibility (see RoomService.Delete).
	Delete(ctx context.Context, id uint) error
}
