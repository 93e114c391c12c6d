package repository

import (
	"context"

	"realtime-chat/internal/domain"
)

// UserRepository defines storage for user accounts. The messaging core only
// reads it (mention resolution); writes come from the identity provider.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
}
