package domain

import "time"

// Presence statuses. Online and offline are derived from connection
// liveness; away and busy are explicit overrides while connected.
const (
	PresenceOnline  = "online"
	PresenceAway    = "away"
	PresenceBusy    = "busy"
	PresenceOffline = "offline"
)

// ValidPresenceStatus reports whether s is one of the known statuses.
func ValidPresenceStatus(s string) bool {
	switch s {
	case PresenceOnline, PresenceAway, PresenceBusy, PresenceOffline:
		return true
	}
	return false
}

// Presence is the persisted availability record for a user. It is derived
// state: the connection registry is the source of truth for online/offline
// and stale records self-heal on read.
type Presence struct {
	UserID      uint      `json:"user_id"`
	Status      string    `json:"status"`
	LastSeen    time.Time `json:"last_seen"`
	CurrentRoom uint      `json:"current_room,omitempty"`
}
