package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"realtime-chat/internal/repository"
	"realtime-chat/internal/service"
)

const defaultHistoryLimit = 50

// MessageHandler exposes message history, search and the REST fallback for
// message operations. Live clients use the websocket path instead.
type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

type SendMessageRequest struct {
	Content  string `json:"content" binding:"required"`
	Type     string `json:"type" binding:"omitempty,oneof=text image file system"`
	ThreadID uint   `json:"thread_id"`
	ReplyTo  *uint  `json:"reply_to"`
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "room_id")
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.SendMessage: invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), service.SendInput{
		RoomID:   roomID,
		SenderID: userID,
		Content:  req.Content,
		Type:     req.Type,
		ThreadID: req.ThreadID,
		ReplyTo:  req.ReplyTo,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, msg)
}

// ListMessages returns room history in chronological order. Bounds come
// from query parameters: limit, offset, before, after (RFC 3339).
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "room_id")
	if !ok {
		return
	}

	q := repository.MessageQuery{Limit: defaultHistoryLimit}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		q.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid offset parameter")
			return
		}
		q.Offset = n
	}
	if v := c.Query("before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid before parameter, want RFC 3339")
			return
		}
		q.Before = t
	}
	if v := c.Query("after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid after parameter, want RFC 3339")
			return
		}
		q.After = t
	}

	msgs, err := h.messageService.List(c.Request.Context(), roomID, userID, q)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"room_id": roomID, "messages": msgs})
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *MessageHandler) EditMessage(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}
	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: content is required")
		return
	}

	msg, err := h.messageService.Edit(c.Request.Context(), messageID, userID, req.Content)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, msg)
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}

	deleted, err := h.messageService.Delete(c.Request.Context(), messageID, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message_id": messageID, "deleted": deleted})
}

func (h *MessageHandler) GetMessage(c *gin.Context) {
	if _, ok := authedUserID(c); !ok {
		return
	}
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}

	msg, err := h.messageService.Get(c.Request.Context(), messageID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, msg)
}

type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required,max=32"`
}

func (h *MessageHandler) AddReaction(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}
	var req ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: emoji is required")
		return
	}

	msg, err := h.messageService.AddReaction(c.Request.Context(), messageID, req.Emoji, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, msg)
}

func (h *MessageHandler) RemoveReaction(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}
	var req ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: emoji is required")
		return
	}

	msg, err := h.messageService.RemoveReaction(c.Request.Context(), messageID, req.Emoji, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, msg)
}

// SearchMessages searches across the caller's rooms, or one room when the
// room_id query parameter is set.
func (h *MessageHandler) SearchMessages(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	query := c.Query("q")
	if query == "" {
		ErrorResponse(c, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	var roomID uint
	if v := c.Query("room_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid room_id parameter")
			return
		}
		roomID = uint(n)
	}
	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = n
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid offset parameter")
			return
		}
		offset = n
	}

	msgs, err := h.messageService.Search(c.Request.Context(), query, userID, roomID, limit, offset)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"query": query, "messages": msgs})
}
