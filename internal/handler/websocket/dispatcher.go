package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"realtime-chat/internal/hub"
	"realtime-chat/internal/repository"
	"realtime-chat/internal/service"
)

// Inbound frame types.
const (
	frameJoinRoom       = "join_room"
	frameLeaveRoom      = "leave_room"
	frameSendMessage    = "send_message"
	frameEditMessage    = "edit_message"
	frameDeleteMessage  = "delete_message"
	frameAddReaction    = "add_reaction"
	frameRemoveReaction = "remove_reaction"
	frameTyping         = "typing"
	framePresence       = "presence"
	frameGetHistory     = "get_history"
)

// frameTimeout bounds the handling of a single inbound frame. Frames
// arrive without a request context of their own.
const frameTimeout = 10 * time.Second

// inboundFrame is the superset of all frames a client may send. Each frame
// type reads the fields it needs.
type inboundFrame struct {
	Type        string `json:"type"`
	RoomID      uint   `json:"room_id"`
	MessageID   uint   `json:"message_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	ThreadID    uint   `json:"thread_id"`
	ReplyTo     *uint  `json:"reply_to"`
	Emoji       string `json:"emoji"`
	IsTyping    bool   `json:"is_typing"`
	Status      string `json:"status"`
	Limit       int    `json:"limit"`
}

// Dispatcher routes inbound websocket frames to the services. Business
// errors go back to the originating connection as error frames; they never
// terminate the connection.
type Dispatcher struct {
	rooms    *service.RoomService
	messages *service.MessageService
	presence *service.PresenceService
	typing   *service.TypingService
	log      *logrus.Entry
}

func NewDispatcher(
	rooms *service.RoomService,
	messages *service.MessageService,
	presence *service.PresenceService,
	typing *service.TypingService,
) *Dispatcher {
	if rooms == nil || messages == nil || presence == nil || typing == nil {
		panic("services cannot be nil for Dispatcher")
	}
	return &Dispatcher{
		rooms:    rooms,
		messages: messages,
		presence: presence,
		typing:   typing,
		log:      logrus.WithField("component", "ws_dispatcher"),
	}
}

// Handle implements hub.InboundHandler.
func (d *Dispatcher) Handle(client *hub.Client, raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		d.sendError(client, "", "malformed frame")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	userID := client.UserID()
	logCtx := d.log.WithFields(logrus.Fields{"user_id": userID, "frame": frame.Type})

	var err error
	switch frame.Type {
	case frameJoinRoom:
		err = d.rooms.Join(ctx, frame.RoomID, userID)
	case frameLeaveRoom:
		err = d.rooms.Leave(ctx, frame.RoomID, userID)
	case frameSendMessage:
		_, err = d.messages.Send(ctx, service.SendInput{
			RoomID:   frame.RoomID,
			SenderID: userID,
			Content:  frame.Content,
			Type:     frame.MessageType,
			ThreadID: frame.ThreadID,
			ReplyTo:  frame.ReplyTo,
		})
	case frameEditMessage:
		_, err = d.messages.Edit(ctx, frame.MessageID, userID, frame.Content)
	case frameDeleteMessage:
		_, err = d.messages.Delete(ctx, frame.MessageID, userID)
	case frameAddReaction:
		_, err = d.messages.AddReaction(ctx, frame.MessageID, frame.Emoji, userID)
	case frameRemoveReaction:
		_, err = d.messages.RemoveReaction(ctx, frame.MessageID, frame.Emoji, userID)
	case frameTyping:
		d.typing.SetTyping(frame.RoomID, userID, frame.IsTyping)
	case framePresence:
		err = d.presence.Update(ctx, userID, frame.Status, frame.RoomID)
	case frameGetHistory:
		d.handleHistory(ctx, client, frame)
	default:
		logCtx.Warn("Unknown frame type")
		d.sendError(client, frame.Type, "unknown frame type")
		return
	}

	if err != nil {
		logCtx.WithError(err).Warn("Frame rejected")
		d.sendError(client, frame.Type, err.Error())
	}
}

func (d *Dispatcher) handleHistory(ctx context.Context, client *hub.Client, frame inboundFrame) {
	limit := frame.Limit
	if limit <= 0 {
		limit = 50
	}
	msgs, err := d.messages.List(ctx, frame.RoomID, client.UserID(), repository.MessageQuery{Limit: limit})
	if err != nil {
		d.sendError(client, frame.Type, err.Error())
		return
	}
	client.Send(service.Envelope("history", map[string]interface{}{
		"room_id":  frame.RoomID,
		"messages": msgs,
	}))
}

func (d *Dispatcher) sendError(client *hub.Client, frameType, message string) {
	client.Send(service.Envelope("error", map[string]interface{}{
		"frame": frameType,
		"error": message,
	}))
}
