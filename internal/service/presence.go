package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"realtime-chat/internal/domain"
	"realtime-chat/internal/repository"
)

// PresenceService derives and persists user availability. The registry is
// the source of truth for online/offline; away and busy are explicit
// overrides that only hold while connections remain live.
type PresenceService struct {
	repo     repository.PresenceRepository
	registry Registry
}

func NewPresenceService(repo repository.PresenceRepository, registry Registry) *PresenceService {
	if repo == nil {
		panic("PresenceRepository cannot be nil for PresenceService")
	}
	if registry == nil {
		panic("Registry cannot be nil for PresenceService")
	}
	return &PresenceService{repo: repo, registry: registry}
}

// Update persists an explicit status change and broadcasts it to every
// connected user. Going non-offline without a live connection is rejected:
// online is a derived fact, not a settable flag.
func (s *PresenceService) Update(ctx context.Context, userID uint, status string, currentRoom uint) error {
	if !domain.ValidPresenceStatus(status) {
		return ErrValidation
	}
	if status != domain.PresenceOffline && !s.registry.IsOnline(userID) {
		return ErrValidation
	}
	p := &domain.Presence{
		UserID:      userID,
		Status:      status,
		LastSeen:    time.Now(),
		CurrentRoom: currentRoom,
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to persist presence")
		return ErrInternalServer
	}
	s.registry.BroadcastAll(Envelope(EventPresenceUpdate, p))
	return nil
}

// Get reads the persisted record, lazily correcting it: a record claiming
// a live status for a user with zero connections is rewritten as offline
// before it is returned. Users never seen report offline.
func (s *PresenceService) Get(ctx context.Context, userID uint) (*domain.Presence, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPresenceNotFound) {
			return &domain.Presence{UserID: userID, Status: domain.PresenceOffline}, nil
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load presence")
		return nil, ErrInternalServer
	}
	if p.Status != domain.PresenceOffline && !s.registry.IsOnline(userID) {
		p.Status = domain.PresenceOffline
		p.CurrentRoom = 0
		if err := s.repo.Upsert(ctx, p); err != nil {
			// Correction will be retried on the next read.
			logrus.WithError(err).WithField("user_id", userID).Warn("Failed to persist presence self-heal")
		}
	}
	return p, nil
}

// HandleConnect marks the user online on their first live connection.
// Called by the websocket handler after registration.
func (s *PresenceService) HandleConnect(ctx context.Context, userID uint) {
	if err := s.Update(ctx, userID, domain.PresenceOnline, 0); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to mark user online")
	}
}

// HandleDisconnect marks the user offline. Wired to the hub's
// last-disconnect callback, so it only fires when no connections remain.
func (s *PresenceService) HandleDisconnect(userID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := &domain.Presence{
		UserID:   userID,
		Status:   domain.PresenceOffline,
		LastSeen: time.Now(),
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to mark user offline")
		return
	}
	s.registry.BroadcastAll(Envelope(EventPresenceUpdate, p))
}
