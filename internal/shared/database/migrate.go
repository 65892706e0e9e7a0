package database

import (
	"boxoffice/internal/events"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&events.Event{}); err != nil {
		return err
	}

	// Storefront listings filter on status and sort by start time
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_events_status_starts_at
		ON events (status, starts_at);
	`).Error
}
