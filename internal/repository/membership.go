package repository

import (
	"context"

	"realtime-chat/internal/domain"
)

// MembershipRepository defines storage for room memberships.
type MembershipRepository interface {
	// Find returns the membership for (roomID, userID) or
	// ErrMembershipNotFound.
	Find(ctx context.Context, roomID, userID uint) (*domain.RoomMembership, error)

	// Save upserts a membership keyed on (roomID, userID).
	Save(ctx context.Context, m *domain.RoomMembership) error

	Delete(ctx context.Context, roomID, userID uint) error
	DeleteByRoom(ctx context.Context, roomID uint) error

	// ListByRoom returns every membership of the room.
	ListByRoom(ctx context.Context, roomID uint) ([]domain.RoomMembership, error)

	// RoomIDsForUser returns the IDs of every room the user belongs to.
	RoomIDsForUser(ctx context.Context, userID uint) ([]uint, error)
}
