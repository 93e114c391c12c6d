package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"realtime-chat/internal/domain"
	"realtime-chat/internal/repository"
)

// GormMessageRepository is the GORM implementation of MessageRepository.
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepository")
	}
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) FindByID(ctx context.Context, id uint) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.WithContext(ctx).First(&msg, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMessageNotFound
		}
		return nil, fmt.Errorf("gorm: find message by id %d: %w", id, err)
	}
	return &msg, nil
}

func (r *GormMessageRepository) Save(ctx context.Context, msg *domain.Message) error {
	if err := r.db.WithContext(ctx).Save(msg).Error; err != nil {
		return fmt.Errorf("gorm: save message (id: %d, room: %d): %w", msg.ID, msg.RoomID, err)
	}
	return nil
}

func (r *GormMessageRepository) ListByRoom(ctx context.Context, roomID uint, q repository.MessageQuery) ([]domain.Message, error) {
	tx := r.db.WithContext(ctx).
		Where("room_id = ? AND is_deleted = ?", roomID, false)
	if !q.Before.IsZero() {
		tx = tx.Where("sent_at < ?", q.Before)
	}
	if !q.After.IsZero() {
		tx = tx.Where("sent_at > ?", q.After)
	}
	tx = tx.Order("sent_at DESC").Order("id DESC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	var messages []domain.Message
	if err := tx.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("gorm: list messages for room %d: %w", roomID, err)
	}
	return messages, nil
}

func (r *GormMessageRepository) Search(ctx context.Context, query string, roomIDs []uint, limit, offset int) ([]domain.Message, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	pattern := "%" + query + "%"
	tx := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Joins("JOIN users ON users.id = messages.sender_id").
		Where("messages.room_id IN ?", roomIDs).
		Where("messages.is_deleted = ?", false).
		Where("LOWER(messages.content) LIKE LOWER(?) OR LOWER(users.username) LIKE LOWER(?)", pattern, pattern).
		Order("messages.sent_at DESC").Order("messages.id DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	var messages []domain.Message
	if err := tx.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("gorm: search messages for %q: %w", query, err)
	}
	return messages, nil
}

func (r *GormMessageRepository) DeleteByRoom(ctx context.Context, roomID uint) error {
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Delete(&domain.Message{}).Error
	if err != nil {
		return fmt.Errorf("gorm: delete messages for room %d: %w", roomID, err)
	}
	return nil
}
