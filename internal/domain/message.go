package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Message types.
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// ValidMessageType reports whether t is one of the known message types.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeSystem:
		return true
	}
	return false
}

// ErrMessageDeleted is returned by entity transition guards when a mutation
// is attempted on a soft-deleted message. Deleted is a terminal state.
var ErrMessageDeleted = errors.New("message is deleted")

// ReactionMap maps an emoji to the sorted set of user IDs that reacted with
// it. It is stored as a JSON text column.
type ReactionMap map[string][]uint

// Value implements driver.Valuer for GORM persistence.
func (m ReactionMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("reactions: marshal: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for GORM persistence.
func (m *ReactionMap) Scan(value interface{}) error {
	if value == nil {
		*m = ReactionMap{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("reactions: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*m = ReactionMap{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// Message is a chat message. Lifecycle: active, edited (repeatable), then
// soft-deleted; the transition guards below keep edit-after-delete and
// react-after-delete unreachable from the service layer.
type Message struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	RoomID    uint        `gorm:"index:idx_msg_room;not null" json:"room_id"`
	SenderID  uint        `gorm:"index;not null" json:"sender_id"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	// JSON-tagged message_type so the websocket envelope's own "type"
	// discriminator never collides with it.
	Type      string      `gorm:"type:varchar(32);not null;default:text" json:"message_type"`
	ThreadID  uint        `gorm:"index" json:"thread_id,omitempty"`
	ReplyTo   *uint       `json:"reply_to,omitempty"`
	SentAt    time.Time   `gorm:"index:idx_msg_room;autoCreateTime" json:"sent_at"`
	EditedAt  *time.Time  `json:"edited_at,omitempty"`
	IsDeleted bool        `gorm:"not null;default:false" json:"is_deleted"`
	DeletedAt *time.Time  `json:"deleted_at,omitempty"`
	DeletedBy *uint       `json:"deleted_by,omitempty"`
	Reactions ReactionMap `gorm:"type:text" json:"reactions"`
}

// MarkEdited replaces the content and stamps edited_at. Editing a deleted
// message is rejected.
func (msg *Message) MarkEdited(content string, at time.Time) error {
	if msg.IsDeleted {
		return ErrMessageDeleted
	}
	msg.Content = content
	msg.EditedAt = &at
	return nil
}

// MarkDeleted soft-deletes the message. Calling it twice is rejected so the
// caller can distinguish a repeat delete from the first.
func (msg *Message) MarkDeleted(by uint, at time.Time) error {
	if msg.IsDeleted {
		return ErrMessageDeleted
	}
	msg.IsDeleted = true
	msg.DeletedAt = &at
	msg.DeletedBy = &by
	return nil
}

// AddReaction inserts userID into the emoji's reaction set. Returns false
// when the user had already reacted (no change).
func (msg *Message) AddReaction(emoji string, userID uint) (bool, error) {
	if msg.IsDeleted {
		return false, ErrMessageDeleted
	}
	if msg.Reactions == nil {
		msg.Reactions = ReactionMap{}
	}
	users := msg.Reactions[emoji]
	for _, id := range users {
		if id == userID {
			return false, nil
		}
	}
	users = append(users, userID)
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	msg.Reactions[emoji] = users
	return true, nil
}

// RemoveReaction removes userID from the emoji's reaction set, pruning the
// emoji key when its set becomes empty. Returns false when the user had no
// reaction to remove.
func (msg *Message) RemoveReaction(emoji string, userID uint) (bool, error) {
	if msg.IsDeleted {
		return false, ErrMessageDeleted
	}
	users, ok := msg.Reactions[emoji]
	if !ok {
		return false, nil
	}
	for i, id := range users {
		if id == userID {
			users = append(users[:i], users[i+1:]...)
			if len(users) == 0 {
				delete(msg.Reactions, emoji)
			} else {
				msg.Reactions[emoji] = users
			}
			return true, nil
		}
	}
	return false, nil
}
