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

// GormNotificationRepository is the GORM implementation of
// NotificationRepository.
type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	if db == nil {
		panic("database connection cannot be nil for GormNotificationRepository")
	}
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	if err := r.db.WithContext(ctx).Save(n).Error; err != nil {
		return fmt.Errorf("gorm: save notification (id: %d, user: %d): %w", n.ID, n.UserID, err)
	}
	return nil
}

func (r *GormNotificationRepository) FindByID(ctx context.Context, id uint) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.WithContext(ctx).First(&n, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("gorm: find notification by id %d: %w", id, err)
	}
	return &n, nil
}

func (r *GormNotificationRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]domain.Notification, error) {
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var notifications []domain.Notification
	if err := tx.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("gorm: list notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

func (r *GormNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&domain.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("gorm: delete read notifications before %v: %w", cutoff, res.Error)
	}
	return res.RowsAffected, nil
}
