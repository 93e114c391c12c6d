package domain

import "time"

// Notification types emitted by the messaging core.
const (
	NotificationTypeMention = "mention"
	NotificationTypeSystem  = "system"
)

// Notification is one entry in a user's inbox. It is marked read at most
// once and purged only by the retention sweep (read and older than the
// configured retention window).
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index:idx_notif_user;not null" json:"user_id"`
	Type      string     `gorm:"type:varchar(32);not null" json:"notification_type"`
	Title     string     `gorm:"type:varchar(191);not null" json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	Data      string     `gorm:"type:text" json:"data,omitempty"`
	IsRead    bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
