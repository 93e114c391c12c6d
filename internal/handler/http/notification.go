package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"realtime-chat/internal/service"
)

const defaultNotificationLimit = 50

// NotificationHandler exposes the per-user notification inbox.
type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	limit := defaultNotificationLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = n
	}

	items, err := h.notifications.List(c.Request.Context(), userID, limit)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"notifications": items})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	notificationID, ok := pathID(c, "notification_id")
	if !ok {
		return
	}

	marked, err := h.notifications.MarkRead(c.Request.Context(), notificationID, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"notification_id": notificationID, "marked": marked})
}
