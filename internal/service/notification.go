package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"realtime-chat/internal/domain"
	"realtime-chat/internal/repository"
)

// DefaultNotificationRetention is how long read notifications are kept
// before the cleanup sweep removes them.
const DefaultNotificationRetention = 30 * 24 * time.Hour

// NotificationService manages per-user notification inboxes and their live
// delivery.
type NotificationService struct {
	repo      repository.NotificationRepository
	registry  Registry
	retention time.Duration
}

func NewNotificationService(repo repository.NotificationRepository, registry Registry, retention time.Duration) *NotificationService {
	if repo == nil {
		panic("NotificationRepository cannot be nil for NotificationService")
	}
	if registry == nil {
		panic("Registry cannot be nil for NotificationService")
	}
	if retention <= 0 {
		retention = DefaultNotificationRetention
	}
	return &NotificationService{repo: repo, registry: registry, retention: retention}
}

// Create persists a notification and returns its id.
func (s *NotificationService) Create(ctx context.Context, n *domain.Notification) (uint, error) {
	if n.UserID == 0 || n.Type == "" {
		return 0, ErrValidation
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := s.repo.Save(ctx, n); err != nil {
		logrus.WithError(err).WithField("user_id", n.UserID).Error("Failed to persist notification")
		return 0, ErrInternalServer
	}
	return n.ID, nil
}

// DeliverMention creates a mention notification for userID and pushes it
// to their live connections.
func (s *NotificationService) DeliverMention(ctx context.Context, userID uint, room *domain.Room, msg *domain.Message) error {
	data, _ := json.Marshal(map[string]interface{}{
		"room_id":    room.ID,
		"message_id": msg.ID,
		"sender_id":  msg.SenderID,
	})
	n := &domain.Notification{
		UserID:    userID,
		Type:      domain.NotificationTypeMention,
		Title:     fmt.Sprintf("You were mentioned in %s", room.Name),
		Body:      msg.Content,
		Data:      string(data),
		CreatedAt: time.Now(),
	}
	if _, err := s.Create(ctx, n); err != nil {
		return err
	}
	s.registry.SendToUser(userID, Envelope(EventNotification, n))
	return nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, limit int) ([]domain.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to list notifications")
		return nil, ErrInternalServer
	}
	return notifications, nil
}

// MarkRead marks the notification read. It returns false without error
// when the notification belongs to another user; unknown ids return
// ErrNotificationNotFound. Marking twice is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) (bool, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return false, ErrNotificationNotFound
		}
		logrus.WithError(err).WithField("notification_id", id).Error("Failed to load notification")
		return false, ErrInternalServer
	}
	if n.UserID != userID {
		return false, nil
	}
	if n.IsRead {
		return true, nil
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	if err := s.repo.Save(ctx, n); err != nil {
		logrus.WithError(err).WithField("notification_id", id).Error("Failed to persist read mark")
		return false, ErrInternalServer
	}
	return true, nil
}

// CleanupExpired deletes read notifications older than the retention
// window. Driven by the periodic worker task.
func (s *NotificationService) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)
	removed, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup notifications: %w", err)
	}
	if removed > 0 {
		logrus.WithField("removed", removed).Info("Expired notifications cleaned up")
	}
	return removed, nil
}
