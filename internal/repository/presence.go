package repository

import (
	"context"

	"realtime-chat/internal/domain"
)

// PresenceRepository defines the upsert-by-key store for presence records,
// backed by Redis. Get returns ErrPresenceNotFound for users never seen.
type PresenceRepository interface {
	Upsert(ctx context.Context, p *domain.Presence) error
	Get(ctx context.Context, userID uint) (*domain.Presence, error)
}
