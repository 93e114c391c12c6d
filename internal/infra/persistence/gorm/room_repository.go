package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"realtime-chat/internal/domain"
	"realtime-chat/internal/repository"
)

// GormRoomRepository is the GORM implementation of RoomRepository.
type GormRoomRepository struct {
	db *gorm.DB
}

func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

func (r *GormRoomRepository) FindByID(ctx context.Context, id uint) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by id %d: %w", id, err)
	}
	return &room, nil
}

func (r *GormRoomRepository) Save(ctx context.Context, room *domain.Room) error {
	if err := r.db.WithContext(ctx).Save(room).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save room (id: %d, name: %s): %w", room.ID, room.Name, err)
	}
	return nil
}

func (r *GormRoomRepository) TouchActivity(ctx context.Context, roomID uint, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", roomID).
		Update("last_activity", at).Error
	if err != nil {
		return fmt.Errorf("gorm: touch activity for room %d: %w", roomID, err)
	}
	return nil
}

func (r *GormRoomRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rooms []domain.Room
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find rooms by ids: %w", err)
	}
	return rooms, nil
}

func (r *GormRoomRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Room{}, id)
	if res.Error != nil {
		return fmt.Errorf("gorm: delete room %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrRoomNotFound
	}
	return nil
}
