package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"realtime-chat/internal/hub"
	"realtime-chat/internal/middleware"
	"realtime-chat/internal/service"
)

// Handler upgrades authenticated requests to websocket connections and
// registers them with the hub. One user may hold several connections.
type Handler struct {
	upgrader    websocket.Upgrader
	hub         *hub.Hub
	roomService *service.RoomService
	presence    *service.PresenceService
}

func NewHandler(h *hub.Hub, roomService *service.RoomService, presence *service.PresenceService) *Handler {
	if h == nil {
		panic("Hub cannot be nil for websocket Handler")
	}
	if roomService == nil || presence == nil {
		panic("services cannot be nil for websocket Handler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// TODO: restrict origins once the frontend domain is fixed
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return &Handler{
		upgrader:    upgrader,
		hub:         h,
		roomService: roomService,
		presence:    presence,
	}
}

// HandleConnection serves GET /ws. After the upgrade the connection is
// attached to every room the user is a member of, so broadcasts reach it
// without an explicit join_room frame.
func (h *Handler) HandleConnection(c *gin.Context) {
	userIDAny, exists := c.Get(middleware.ContextUserID)
	if !exists {
		logrus.Warn("WS handler: user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	userID, ok := userIDAny.(uint)
	if !ok {
		logrus.Error("WS handler: user ID in context is not uint")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade writes its own HTTP error response.
		logCtx.WithError(err).Error("WS handler: failed to upgrade connection")
		return
	}

	client := h.hub.Register(conn, userID)
	logCtx = logCtx.WithField("connection_id", client.ID())
	logCtx.Info("WS handler: connection registered")

	// Attach the connection to the user's rooms before the pumps start so
	// no room broadcast races past it.
	rooms, err := h.roomService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		logCtx.WithError(err).Warn("WS handler: failed to load rooms for connection")
	} else {
		for _, room := range rooms {
			h.hub.JoinRoom(userID, room.ID)
		}
	}

	h.hub.SendToUser(userID, service.Envelope(service.EventConnectionConfirmed, map[string]interface{}{
		"connection_id": client.ID(),
		"user_id":       userID,
	}))

	h.presence.HandleConnect(c.Request.Context(), userID)

	client.Run()
}
