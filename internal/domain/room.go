package domain

import "time"

// Room types.
const (
	RoomTypePublic  = "public"
	RoomTypePrivate = "private"
	RoomTypeDirect  = "direct"
	RoomTypeGroup   = "group"
)

// ValidRoomType reports whether t is one of the known room types.
func ValidRoomType(t string) bool {
	switch t {
	case RoomTypePublic, RoomTypePrivate, RoomTypeDirect, RoomTypeGroup:
		return true
	}
	return false
}

// Room is a named channel with a membership list. Archived rooms are kept
// for history but reject new messages.
type Room struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(191);not null;index:idx_room_name" json:"name"`
	Type         string    `gorm:"type:varchar(32);not null;default:public" json:"type"`
	Archived     bool      `gorm:"not null;default:false" json:"archived"`
	CreatorID    uint      `gorm:"index;not null" json:"creator_id"`
	LastActivity time.Time `gorm:"index" json:"last_activity"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"-"`
}
