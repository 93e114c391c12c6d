package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"realtime-chat/internal/service"
	"realtime-chat/internal/tasks"
)

// NotificationCleanupHandler runs the notification retention sweep.
type NotificationCleanupHandler struct {
	notifications *service.NotificationService
}

func NewNotificationCleanupHandler(notifications *service.NotificationService) *NotificationCleanupHandler {
	if notifications == nil {
		panic("NotificationService cannot be nil for NotificationCleanupHandler")
	}
	return &NotificationCleanupHandler{notifications: notifications}
}

// ProcessTask implements asynq.Handler.
func (h *NotificationCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	var payload tasks.NotificationCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal cleanup payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	removed, err := h.notifications.CleanupExpired(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Notification cleanup failed")
		return fmt.Errorf("notification cleanup: %w", err)
	}

	logCtx.WithFields(logrus.Fields{
		"removed": removed,
		"lag":     time.Since(payload.EnqueuedAt).String(),
	}).Info("Notification cleanup completed")
	return nil
}
