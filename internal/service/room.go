package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"realtime-chat/internal/domain"
	"realtime-chat/internal/repository"
)

const maxRoomNameLength = 100

// RoomService owns room lifecycle and membership. Message flow consults
// rooms through the same repositories but lives in MessageService.
type RoomService struct {
	roomRepo    repository.RoomRepository
	memberRepo  repository.MembershipRepository
	messageRepo repository.MessageRepository
	registry    Registry
	bus         EventPublisher
	log         *logrus.Entry
}

func NewRoomService(
	roomRepo repository.RoomRepository,
	memberRepo repository.MembershipRepository,
	messageRepo repository.MessageRepository,
	registry Registry,
	bus EventPublisher,
) *RoomService {
	if roomRepo == nil || memberRepo == nil || messageRepo == nil {
		panic("repositories cannot be nil for RoomService")
	}
	if registry == nil {
		panic("Registry cannot be nil for RoomService")
	}
	return &RoomService{
		roomRepo:    roomRepo,
		memberRepo:  memberRepo,
		messageRepo: messageRepo,
		registry:    registry,
		bus:         bus,
		log:         logrus.WithField("component", "room_service"),
	}
}

// Create persists a room and enrolls the creator as its owner.
func (s *RoomService) Create(ctx context.Context, creatorID uint, name, roomType string) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxRoomNameLength {
		return nil, fmt.Errorf("%w: room name must be 1-%d characters", ErrValidation, maxRoomNameLength)
	}
	if roomType == "" {
		roomType = domain.RoomTypePublic
	}
	if !domain.ValidRoomType(roomType) {
		return nil, fmt.Errorf("%w: unknown room type %q", ErrValidation, roomType)
	}

	room := &domain.Room{
		Name:         name,
		Type:         roomType,
		CreatorID:    creatorID,
		LastActivity: time.Now(),
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		s.log.WithError(err).Error("Failed to create room")
		return nil, ErrInternalServer
	}
	if err := s.memberRepo.Save(ctx, &domain.RoomMembership{
		RoomID: room.ID,
		UserID: creatorID,
		Role:   domain.RoomRoleOwner,
	}); err != nil {
		s.log.WithError(err).WithField("room_id", room.ID).Error("Failed to enroll room creator")
		return nil, ErrInternalServer
	}

	s.log.WithFields(logrus.Fields{
		"room_id": room.ID,
		"user_id": creatorID,
		"type":    roomType,
	}).Info("Room created")
	if s.bus != nil {
		s.bus.Publish(ctx, "room.created", map[string]interface{}{"room_id": room.ID, "creator_id": creatorID})
	}
	return room, nil
}

// Join adds the user to a room and attaches their live connections to it.
// Public and group rooms are open; private and direct rooms admit only
// users who already hold a membership (invited out of band).
func (s *RoomService) Join(ctx context.Context, roomID, userID uint) error {
	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return err
	}

	_, err = s.memberRepo.Find(ctx, roomID, userID)
	alreadyMember := err == nil
	if err != nil && !errors.Is(err, repository.ErrMembershipNotFound) {
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to look up membership")
		return ErrInternalServer
	}

	if !alreadyMember {
		switch room.Type {
		case domain.RoomTypePublic, domain.RoomTypeGroup:
			// open to anyone
		default:
			return fmt.Errorf("%w: room %d requires an invitation", ErrAccessDenied, roomID)
		}
		if err := s.memberRepo.Save(ctx, &domain.RoomMembership{
			RoomID: roomID,
			UserID: userID,
			Role:   domain.RoomRoleMember,
		}); err != nil {
			s.log.WithError(err).WithField("room_id", roomID).Error("Failed to save membership")
			return ErrInternalServer
		}
	}

	s.registry.JoinRoom(userID, roomID)
	if !alreadyMember {
		s.registry.BroadcastToRoom(roomID, Envelope(EventUserJoined, map[string]interface{}{
			"room_id": roomID,
			"user_id": userID,
		}), userID)
		s.log.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).Info("User joined room")
	}
	return nil
}

// Leave removes the user's membership and detaches their connections.
// Leaving a room the user is not in is a no-op.
func (s *RoomService) Leave(ctx context.Context, roomID, userID uint) error {
	if _, err := s.loadRoom(ctx, roomID); err != nil {
		return err
	}

	_, err := s.memberRepo.Find(ctx, roomID, userID)
	if errors.Is(err, repository.ErrMembershipNotFound) {
		s.registry.LeaveRoom(userID, roomID)
		return nil
	}
	if err != nil {
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to look up membership")
		return ErrInternalServer
	}

	if err := s.memberRepo.Delete(ctx, roomID, userID); err != nil {
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to delete membership")
		return ErrInternalServer
	}
	s.registry.LeaveRoom(userID, roomID)
	s.registry.BroadcastToRoom(roomID, Envelope(EventUserLeft, map[string]interface{}{
		"room_id": roomID,
		"user_id": userID,
	}), userID)
	s.log.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).Info("User left room")
	return nil
}

// Get returns the room if the caller is a member, or the room is public.
func (s *RoomService) Get(ctx context.Context, roomID, userID uint) (*domain.Room, error) {
	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Type == domain.RoomTypePublic {
		return room, nil
	}
	if _, err := s.memberRepo.Find(ctx, roomID, userID); err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return nil, fmt.Errorf("%w: not a member of room %d", ErrAccessDenied, roomID)
		}
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to look up membership")
		return nil, ErrInternalServer
	}
	return room, nil
}

// ListForUser returns every room the user belongs to.
func (s *RoomService) ListForUser(ctx context.Context, userID uint) ([]domain.Room, error) {
	ids, err := s.memberRepo.RoomIDsForUser(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("Failed to list room memberships")
		return nil, ErrInternalServer
	}
	if len(ids) == 0 {
		return []domain.Room{}, nil
	}
	rooms, err := s.roomRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("Failed to load rooms")
		return nil, ErrInternalServer
	}
	return rooms, nil
}

// Members returns the room's membership list, visible to members only.
func (s *RoomService) Members(ctx context.Context, roomID, userID uint) ([]domain.RoomMembership, error) {
	if _, err := s.Get(ctx, roomID, userID); err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListByRoom(ctx, roomID)
	if err != nil {
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to list members")
		return nil, ErrInternalServer
	}
	return members, nil
}

// Archive freezes the room. Archived rooms stay readable but reject new
// messages. Admins and the owner may archive.
func (s *RoomService) Archive(ctx context.Context, roomID, userID uint) error {
	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if err := s.requireRole(ctx, roomID, userID, domain.RoomRoleAdmin, domain.RoomRoleOwner); err != nil {
		return err
	}
	if room.Archived {
		return nil
	}
	room.Archived = true
	if err := s.roomRepo.Save(ctx, room); err != nil {
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to archive room")
		return ErrInternalServer
	}
	s.log.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).Info("Room archived")
	return nil
}

// Delete hard-deletes the room and everything under it: messages first,
// then memberships, then the room row. This cascade is the only path that
// hard-deletes messages. Owner only.
func (s *RoomService) Delete(ctx context.Context, roomID, userID uint) error {
	if _, err := s.loadRoom(ctx, roomID); err != nil {
		return err
	}
	if err := s.requireRole(ctx, roomID, userID, domain.RoomRoleOwner); err != nil {
		return err
	}

	if err := s.messageRepo.DeleteByRoom(ctx, roomID); err != nil {
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to delete room messages")
		return ErrInternalServer
	}
	if err := s.memberRepo.DeleteByRoom(ctx, roomID); err != nil {
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to delete room memberships")
		return ErrInternalServer
	}
	if err := s.roomRepo.Delete(ctx, roomID); err != nil {
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to delete room")
		return ErrInternalServer
	}

	s.registry.ResetRoom(roomID)
	s.log.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).Info("Room deleted")
	if s.bus != nil {
		s.bus.Publish(ctx, "room.deleted", map[string]interface{}{"room_id": roomID})
	}
	return nil
}

// MemberRole returns the caller's role in the room, or ErrAccessDenied if
// they are not a member.
func (s *RoomService) MemberRole(ctx context.Context, roomID, userID uint) (string, error) {
	m, err := s.memberRepo.Find(ctx, roomID, userID)
	if errors.Is(err, repository.ErrMembershipNotFound) {
		return "", fmt.Errorf("%w: not a member of room %d", ErrAccessDenied, roomID)
	}
	if err != nil {
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to look up membership")
		return "", ErrInternalServer
	}
	return m.Role, nil
}

func (s *RoomService) loadRoom(ctx context.Context, roomID uint) (*domain.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return nil, fmt.Errorf("%w: room %d", ErrRoomNotFound, roomID)
	}
	if err != nil {
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to load room")
		return nil, ErrInternalServer
	}
	return room, nil
}

func (s *RoomService) requireRole(ctx context.Context, roomID, userID uint, roles ...string) error {
	m, err := s.memberRepo.Find(ctx, roomID, userID)
	if errors.Is(err, repository.ErrMembershipNotFound) {
		return fmt.Errorf("%w: not a member of room %d", ErrAccessDenied, roomID)
	}
	if err != nil {
		s.log.WithError(err).WithField("room_id", roomID).Error("Failed to look up membership")
		return ErrInternalServer
	}
	for _, role := range roles {
		if m.Role == role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s cannot perform this action", ErrForbidden, m.Role)
}
