package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"realtime-chat/internal/domain"
	"realtime-chat/internal/repository"
)

// GormMembershipRepository is the GORM implementation of
// MembershipRepository.
type GormMembershipRepository struct {
	db *gorm.DB
}

func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMembershipRepository")
	}
	return &GormMembershipRepository{db: db}
}

func (r *GormMembershipRepository) Find(ctx context.Context, roomID, userID uint) (*domain.RoomMembership, error) {
	var m domain.RoomMembership
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("gorm: find membership (room %d, user %d): %w", roomID, userID, err)
	}
	return &m, nil
}

// Save upserts on the (room_id, user_id) unique index so a rejoin updates
// the role instead of failing on the duplicate key.
func (r *GormMembershipRepository) Save(ctx context.Context, m *domain.RoomMembership) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(m).Error
	if err != nil {
		return fmt.Errorf("gorm: save membership (room %d, user %d): %w", m.RoomID, m.UserID, err)
	}
	return nil
}

func (r *GormMembershipRepository) Delete(ctx context.Context, roomID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&domain.RoomMembership{})
	if res.Error != nil {
		return fmt.Errorf("gorm: delete membership (room %d, user %d): %w", roomID, userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrMembershipNotFound
	}
	return nil
}

func (r *GormMembershipRepository) DeleteByRoom(ctx context.Context, roomID uint) error {
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Delete(&domain.RoomMembership{}).Error
	if err != nil {
		return fmt.Errorf("gorm: delete memberships for room %d: %w", roomID, err)
	}
	return nil
}

func (r *GormMembershipRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.RoomMembership, error) {
	var members []domain.RoomMembership
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list members for room %d: %w", roomID, err)
	}
	return members, nil
}

func (r *GormMembershipRepository) RoomIDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&domain.RoomMembership{}).
		Where("user_id = ?", userID).
		Pluck("room_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: room ids for user %d: %w", userID, err)
	}
	return ids, nil
}
