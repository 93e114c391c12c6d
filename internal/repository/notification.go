package repository

import (
	"context"
	"time"

	"realtime-chat/internal/domain"
)

// NotificationRepository defines storage for per-user notification inboxes.
type NotificationRepository interface {
	Save(ctx context.Context, n *domain.Notification) error
	FindByID(ctx context.Context, id uint) (*domain.Notification, error)

	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID uint, limit int) ([]domain.Notification, error)

	// DeleteReadBefore removes read notifications created before the cutoff
	// and returns the number removed. Used by the retention sweep.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
