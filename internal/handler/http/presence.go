package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realtime-chat/internal/domain"
	"realtime-chat/internal/service"
)

// PresenceHandler exposes presence reads and manual status updates.
type PresenceHandler struct {
	presence *service.PresenceService
}

func NewPresenceHandler(presence *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

type UpdatePresenceRequest struct {
	Status      string `json:"status" binding:"required,oneof=online away busy offline"`
	CurrentRoom uint   `json:"current_room"`
}

func (h *PresenceHandler) UpdatePresence(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	var req UpdatePresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: status must be one of "+
			domain.PresenceOnline+", "+domain.PresenceAway+", "+domain.PresenceBusy+", "+domain.PresenceOffline)
		return
	}

	if err := h.presence.Update(c.Request.Context(), userID, req.Status, req.CurrentRoom); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Presence updated", "status": req.Status})
}

func (h *PresenceHandler) GetPresence(c *gin.Context) {
	if _, ok := authedUserID(c); !ok {
		return
	}
	targetID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	p, err := h.presence.Get(c.Request.Context(), targetID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, p)
}
