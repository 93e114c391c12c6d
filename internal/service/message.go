package service

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"realtime-chat/internal/domain"
	"realtime-chat/internal/repository"
)

// DefaultMaxContentLength bounds message content when no limit is
// configured.
const DefaultMaxContentLength = 4000

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// MessageService owns the message lifecycle: send, edit, soft-delete,
// reactions, listing and search, plus mention-driven notification fan-out.
type MessageService struct {
	messageRepo   repository.MessageRepository
	roomRepo      repository.RoomRepository
	memberRepo    repository.MembershipRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	registry      Registry
	bus           EventPublisher
	maxContentLen int
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	roomRepo repository.RoomRepository,
	memberRepo repository.MembershipRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	registry Registry,
	bus EventPublisher,
	maxContentLen int,
) *MessageService {
	if messageRepo == nil || roomRepo == nil || memberRepo == nil || userRepo == nil {
		panic("repositories cannot be nil for MessageService")
	}
	if notifications == nil {
		panic("NotificationService cannot be nil for MessageService")
	}
	if registry == nil {
		panic("Registry cannot be nil for MessageService")
	}
	if maxContentLen <= 0 {
		maxContentLen = DefaultMaxContentLength
	}
	return &MessageService{
		messageRepo:   messageRepo,
		roomRepo:      roomRepo,
		memberRepo:    memberRepo,
		userRepo:      userRepo,
		notifications: notifications,
		registry:      registry,
		bus:           bus,
		maxContentLen: maxContentLen,
	}
}

// SendInput carries the caller-supplied fields of a new message.
type SendInput struct {
	RoomID   uint
	SenderID uint
	Content  string
	Type     string
	ThreadID uint
	ReplyTo  *uint
}

// Send validates, persists and fans out a new message, then scans it for
// @username mentions. Membership is checked once, here; it is never
// re-validated retroactively.
func (s *MessageService) Send(ctx context.Context, in SendInput) (*domain.Message, error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id":   in.RoomID,
		"sender_id": in.SenderID,
		"operation": "SendMessage",
	})

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrValidation
	}
	if len(content) > s.maxContentLen {
		return nil, ErrValidation
	}
	msgType := in.Type
	if msgType == "" {
		msgType = domain.MessageTypeText
	}
	if !domain.ValidMessageType(msgType) {
		return nil, ErrValidation
	}

	room, err := s.roomRepo.FindByID(ctx, in.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Failed to load room")
		return nil, ErrInternalServer
	}
	if room.Archived {
		return nil, ErrRoomArchived
	}

	if _, err := s.memberRepo.Find(ctx, in.RoomID, in.SenderID); err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return nil, ErrAccessDenied
		}
		logCtx.WithError(err).Error("Failed to check membership")
		return nil, ErrInternalServer
	}

	now := time.Now()
	msg := &domain.Message{
		RoomID:    in.RoomID,
		SenderID:  in.SenderID,
		Content:   content,
		Type:      msgType,
		ThreadID:  in.ThreadID,
		ReplyTo:   in.ReplyTo,
		SentAt:    now,
		Reactions: domain.ReactionMap{},
	}
	if err := s.messageRepo.Save(ctx, msg); err != nil {
		logCtx.WithError(err).Error("Failed to persist message")
		return nil, ErrInternalServer
	}
	if err := s.roomRepo.TouchActivity(ctx, in.RoomID, now); err != nil {
		// Stale last-activity is tolerable; the message itself is saved.
		logCtx.WithError(err).Warn("Failed to bump room activity")
	}

	s.registry.BroadcastToRoom(in.RoomID, Envelope(EventNewMessage, msg), 0)
	s.fanOutMentions(ctx, room, msg)
	if s.bus != nil {
		s.bus.Publish(ctx, "message.sent", map[string]interface{}{
			"message_id": msg.ID,
			"room_id":    msg.RoomID,
			"sender_id":  msg.SenderID,
		})
	}

	logCtx.WithField("message_id", msg.ID).Info("Message sent")
	return msg, nil
}

// fanOutMentions resolves each @username token and notifies mentioned room
// members. The sender never notifies themself. Failures here never fail
// the send; the message is already committed and broadcast.
func (s *MessageService) fanOutMentions(ctx context.Context, room *domain.Room, msg *domain.Message) {
	usernames := mentionedUsernames(msg.Content)
	if len(usernames) == 0 {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id":    msg.RoomID,
		"message_id": msg.ID,
		"operation":  "fanOutMentions",
	})

	for _, username := range usernames {
		user, err := s.userRepo.FindByUsername(ctx, username)
		if err != nil {
			if !errors.Is(err, repository.ErrUserNotFound) {
				logCtx.WithError(err).WithField("username", username).Warn("Failed to resolve mention")
			}
			continue
		}
		if user.ID == msg.SenderID {
			continue
		}
		if _, err := s.memberRepo.Find(ctx, msg.RoomID, user.ID); err != nil {
			continue // mentioning a non-member creates nothing
		}
		if err := s.notifications.DeliverMention(ctx, user.ID, room, msg); err != nil {
			logCtx.WithError(err).WithField("mentioned_user", user.ID).Warn("Failed to deliver mention notification")
		}
	}
}

// mentionedUsernames returns the unique @username tokens in order of first
// appearance.
func mentionedUsernames(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	usernames := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			usernames = append(usernames, m[1])
		}
	}
	return usernames
}

// Edit replaces the message content. Only the original sender may edit;
// edited_at is stamped on every edit and soft-deleted messages reject it.
func (s *MessageService) Edit(ctx context.Context, id uint, actorID uint, newContent string) (*domain.Message, error) {
	content := strings.TrimSpace(newContent)
	if content == "" || len(content) > s.maxContentLen {
		return nil, ErrValidation
	}

	msg, err := s.loadMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != actorID {
		return nil, ErrForbidden
	}
	if err := msg.MarkEdited(content, time.Now()); err != nil {
		return nil, ErrMessageNotFound // deleted is terminal; hidden from actors
	}
	if err := s.messageRepo.Save(ctx, msg); err != nil {
		logrus.WithError(err).WithField("message_id", id).Error("Failed to persist edit")
		return nil, ErrInternalServer
	}

	s.registry.BroadcastToRoom(msg.RoomID, Envelope(EventMessageEdited, msg), 0)
	return msg, nil
}

// Delete soft-deletes the message. The sender may always delete their own;
// room moderators, admins and owners may delete anyone's. The broadcast
// carries only the message id, never the content. Returns false when the
// message was already deleted.
func (s *MessageService) Delete(ctx context.Context, id uint, actorID uint) (bool, error) {
	msg, err := s.loadMessage(ctx, id)
	if err != nil {
		return false, err
	}
	if msg.SenderID != actorID {
		member, err := s.memberRepo.Find(ctx, msg.RoomID, actorID)
		if err != nil || !member.CanModerate() {
			return false, ErrForbidden
		}
	}
	if err := msg.MarkDeleted(actorID, time.Now()); err != nil {
		return false, nil // already deleted; terminal state, nothing to do
	}
	if err := s.messageRepo.Save(ctx, msg); err != nil {
		logrus.WithError(err).WithField("message_id", id).Error("Failed to persist delete")
		return false, ErrInternalServer
	}

	s.registry.BroadcastToRoom(msg.RoomID, Envelope(EventMessageDeleted, map[string]interface{}{
		"message_id": msg.ID,
		"room_id":    msg.RoomID,
	}), 0)
	return true, nil
}

// AddReaction inserts the user into the emoji's reaction set. Idempotent:
// reacting twice neither errors nor re-broadcasts.
func (s *MessageService) AddReaction(ctx context.Context, id uint, emoji string, userID uint) (*domain.Message, error) {
	if emoji == "" {
		return nil, ErrValidation
	}
	msg, err := s.loadMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberRepo.Find(ctx, msg.RoomID, userID); err != nil {
		return nil, ErrAccessDenied
	}
	changed, err := msg.AddReaction(emoji, userID)
	if err != nil {
		return nil, ErrMessageNotFound
	}
	if !changed {
		return msg, nil
	}
	if err := s.messageRepo.Save(ctx, msg); err != nil {
		logrus.WithError(err).WithField("message_id", id).Error("Failed to persist reaction")
		return nil, ErrInternalServer
	}

	s.registry.BroadcastToRoom(msg.RoomID, reactionEnvelope(EventReactionAdded, msg, emoji, userID), 0)
	return msg, nil
}

// RemoveReaction removes the user from the emoji's set, pruning the emoji
// key when it empties.
func (s *MessageService) RemoveReaction(ctx context.Context, id uint, emoji string, userID uint) (*domain.Message, error) {
	msg, err := s.loadMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, err := msg.RemoveReaction(emoji, userID)
	if err != nil {
		return nil, ErrMessageNotFound
	}
	if !changed {
		return msg, nil
	}
	if err := s.messageRepo.Save(ctx, msg); err != nil {
		logrus.WithError(err).WithField("message_id", id).Error("Failed to persist reaction removal")
		return nil, ErrInternalServer
	}

	s.registry.BroadcastToRoom(msg.RoomID, reactionEnvelope(EventReactionRemoved, msg, emoji, userID), 0)
	return msg, nil
}

func reactionEnvelope(event string, msg *domain.Message, emoji string, userID uint) []byte {
	return Envelope(event, map[string]interface{}{
		"message_id": msg.ID,
		"room_id":    msg.RoomID,
		"emoji":      emoji,
		"user_id":    userID,
		"reactions":  msg.Reactions,
	})
}

// List returns the room's messages in chronological order under the given
// bounds, excluding soft-deleted ones. Non-members get an empty page, not
// an error.
func (s *MessageService) List(ctx context.Context, roomID, userID uint, q repository.MessageQuery) ([]domain.Message, error) {
	if _, err := s.memberRepo.Find(ctx, roomID, userID); err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return []domain.Message{}, nil
		}
		logrus.WithError(err).Error("Failed to check membership for listing")
		return nil, ErrInternalServer
	}
	messages, err := s.messageRepo.ListByRoom(ctx, roomID, q)
	if err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Failed to list messages")
		return nil, ErrInternalServer
	}
	// Repository returns newest first; present oldest first.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].SentAt.Before(messages[j].SentAt)
	})
	return messages, nil
}

// Search matches the query case-insensitively against content and sender
// username, restricted to rooms the caller belongs to. An optional roomID
// narrows the scope; a room the caller is not in yields no results.
func (s *MessageService) Search(ctx context.Context, query string, userID uint, roomID uint, limit, offset int) ([]domain.Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrValidation
	}
	roomIDs, err := s.memberRepo.RoomIDsForUser(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to resolve searchable rooms")
		return nil, ErrInternalServer
	}
	if roomID != 0 {
		member := false
		for _, id := range roomIDs {
			if id == roomID {
				member = true
				break
			}
		}
		if !member {
			return []domain.Message{}, nil
		}
		roomIDs = []uint{roomID}
	}
	if len(roomIDs) == 0 {
		return []domain.Message{}, nil
	}
	messages, err := s.messageRepo.Search(ctx, query, roomIDs, limit, offset)
	if err != nil {
		logrus.WithError(err).WithField("query", query).Error("Failed to search messages")
		return nil, ErrInternalServer
	}
	return messages, nil
}

// Get looks a message up by id. Soft-deleted messages are returned with
// is_deleted set; audit consumers rely on that.
func (s *MessageService) Get(ctx context.Context, id uint) (*domain.Message, error) {
	return s.loadMessage(ctx, id)
}

func (s *MessageService) loadMessage(ctx context.Context, id uint) (*domain.Message, error) {
	msg, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		logrus.WithError(err).WithField("message_id", id).Error("Failed to load message")
		return nil, ErrInternalServer
	}
	return msg, nil
}
