package setup

import (
	"fmt"

	"gorm.io/gorm"

	"realtime-chat/internal/domain"
)

// MigrateDB creates or updates the relational schema. Presence lives in
// Redis and typing state is never persisted, so neither appears here.
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Room{},
		&domain.RoomMembership{},
		&domain.Message{},
		&domain.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate tables: %w", err)
	}
	return nil
}
