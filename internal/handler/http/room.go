package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"realtime-chat/internal/service"
)

// RoomHandler wires room lifecycle endpoints to the RoomService.
type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Type string `json:"type" binding:"omitempty,oneof=public private direct group"`
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateRoom: invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	room, err := h.roomService.Create(c.Request.Context(), userID, req.Name, req.Type)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"room_id": room.ID, "user_id": userID}).Info("Handler.CreateRoom: room created")
	SuccessResponse(c, http.StatusOK, gin.H{
		"message": "Room created successfully",
		"room":    room,
	})
}

func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "room_id")
	if !ok {
		return
	}

	if err := h.roomService.Join(c.Request.Context(), roomID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Joined room", "room_id": roomID})
}

func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "room_id")
	if !ok {
		return
	}

	if err := h.roomService.Leave(c.Request.Context(), roomID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Left room", "room_id": roomID})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "room_id")
	if !ok {
		return
	}

	room, err := h.roomService.Get(c.Request.Context(), roomID, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, room)
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	rooms, err := h.roomService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *RoomHandler) ListMembers(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "room_id")
	if !ok {
		return
	}

	members, err := h.roomService.Members(c.Request.Context(), roomID, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"room_id": roomID, "members": members})
}

func (h *RoomHandler) ArchiveRoom(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "room_id")
	if !ok {
		return
	}

	if err := h.roomService.Archive(c.Request.Context(), roomID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Room archived", "room_id": roomID})
}

func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "room_id")
	if !ok {
		return
	}

	if err := h.roomService.Delete(c.Request.Context(), roomID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Room deleted", "room_id": roomID})
}
