package repository

import (
	"context"
	"time"

	"realtime-chat/internal/domain"
)

// MessageQuery bounds a room listing. Zero values mean unbounded.
type MessageQuery struct {
	Limit  int
	Offset int
	Before time.Time
	After  time.Time
}

// MessageRepository defines storage for messages. ListByRoom and Search
// exclude soft-deleted rows; FindByID returns them (audit lookups).
type MessageRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Message, error)
	Save(ctx context.Context, msg *domain.Message) error

	// ListByRoom returns non-deleted messages of the room, newest first,
	// under the query bounds.
	ListByRoom(ctx context.Context, roomID uint, q MessageQuery) ([]domain.Message, error)

	// Search returns non-deleted messages whose content or sender username
	// contains the query (case-insensitive), newest first, restricted to
	// the given rooms.
	Search(ctx context.Context, query string, roomIDs []uint, limit, offset int) ([]domain.Message, error)

	// DeleteByRoom hard-deletes every message of the room. Only the
	// room-deletion cascade goes through here.
	DeleteByRoom(ctx context.Context, roomID uint) error
}
