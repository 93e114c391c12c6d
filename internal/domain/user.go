package domain

import "time"

// Global user roles. Room-level roles live on RoomMembership.
const (
	UserRoleAdmin = "admin"
	UserRoleUser  = "user"
)

// User is an account known to the identity provider. Password holds the
// bcrypt hash, never the plaintext.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null" json:"username"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Email     string    `gorm:"type:varchar(191);uniqueIndex:idx_email" json:"email,omitempty"`
	Role      string    `gorm:"type:varchar(32);not null;default:user" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Identity is what the auth middleware resolves from a token and what the
// services trust without re-authenticating.
type Identity struct {
	UserID   uint
	Username string
	Role     string
}
