package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Typing defaults. The expiry sweep is the only recovery path for clients
// that disconnect without sending a stop signal.
const (
	DefaultTypingTimeout       = 30 * time.Second
	DefaultTypingSweepInterval = 10 * time.Second
)

// TypingService tracks ephemeral per-room typing state. Nothing here is
// ever persisted; a restart simply forgets who was typing.
type TypingService struct {
	mu    sync.Mutex
	rooms map[uint]map[uint]time.Time

	registry Registry
	timeout  time.Duration
	interval time.Duration
	log      *logrus.Entry
}

func NewTypingService(registry Registry, timeout, sweepInterval time.Duration) *TypingService {
	if registry == nil {
		panic("Registry cannot be nil for TypingService")
	}
	if timeout <= 0 {
		timeout = DefaultTypingTimeout
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultTypingSweepInterval
	}
	return &TypingService{
		rooms:    make(map[uint]map[uint]time.Time),
		registry: registry,
		timeout:  timeout,
		interval: sweepInterval,
		log:      logrus.WithField("component", "typing"),
	}
}

// SetTyping upserts the user's typing timestamp (or clears it on a stop
// signal) and broadcasts the indicator to the room, excluding the typer.
func (s *TypingService) SetTyping(roomID, userID uint, isTyping bool) {
	s.mu.Lock()
	if isTyping {
		if _, ok := s.rooms[roomID]; !ok {
			s.rooms[roomID] = make(map[uint]time.Time)
		}
		s.rooms[roomID][userID] = time.Now()
	} else if users, ok := s.rooms[roomID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(s.rooms, roomID)
		}
	}
	s.mu.Unlock()

	s.registry.BroadcastToRoom(roomID, typingEnvelope(roomID, userID, isTyping), userID)
}

// TypingUsers returns the users currently typing in the room.
func (s *TypingService) TypingUsers(roomID uint) []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]uint, 0, len(s.rooms[roomID]))
	for userID := range s.rooms[roomID] {
		users = append(users, userID)
	}
	return users
}

// ExpireStale removes entries older than the timeout and broadcasts one
// stop indicator for each. Returns how many entries expired.
func (s *TypingService) ExpireStale() int {
	type expired struct{ roomID, userID uint }
	cutoff := time.Now().Add(-s.timeout)

	s.mu.Lock()
	var stale []expired
	for roomID, users := range s.rooms {
		for userID, last := range users {
			if last.Before(cutoff) {
				stale = append(stale, expired{roomID, userID})
				delete(users, userID)
			}
		}
		if len(users) == 0 {
			delete(s.rooms, roomID)
		}
	}
	s.mu.Unlock()

	for _, e := range stale {
		s.registry.BroadcastToRoom(e.roomID, typingEnvelope(e.roomID, e.userID, false), e.userID)
	}
	if len(stale) > 0 {
		s.log.WithField("expired", len(stale)).Debug("Stale typing indicators cleared")
	}
	return len(stale)
}

// Run drives the expiry sweep until the context is cancelled. It runs in
// its own goroutine, started at bootstrap.
func (s *TypingService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.log.Info("Typing expiry sweep running")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Typing expiry sweep stopped")
			return
		case <-ticker.C:
			s.ExpireStale()
		}
	}
}

func typingEnvelope(roomID, userID uint, isTyping bool) []byte {
	return Envelope(EventTypingIndicator, map[string]interface{}{
		"room_id":   roomID,
		"user_id":   userID,
		"is_typing": isTyping,
	})
}
