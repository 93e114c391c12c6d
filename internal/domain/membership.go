package domain

import "time"

// Room-level membership roles, in ascending privilege order.
const (
	RoomRoleMember    = "member"
	RoomRoleModerator = "moderator"
	RoomRoleAdmin     = "admin"
	RoomRoleOwner     = "owner"
)

// RoomMembership links a user to a room. The messaging core consults it at
// write time but never re-validates past messages against it.
type RoomMembership struct {
	ID       uint      `gorm:"primaryKey" json:"-"`
	RoomID   uint      `gorm:"uniqueIndex:idx_room_user;not null" json:"room_id"`
	UserID   uint      `gorm:"uniqueIndex:idx_room_user;index:idx_member_user;not null" json:"user_id"`
	Role     string    `gorm:"type:varchar(32);not null;default:member" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// CanModerate reports whether the membership role allows acting on other
// members' messages.
func (m RoomMembership) CanModerate() bool {
	switch m.Role {
	case RoomRoleModerator, RoomRoleAdmin, RoomRoleOwner:
		return true
	}
	return false
}
