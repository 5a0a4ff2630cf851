package db

import (
	"fmt"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model owned by the messaging subsystem.
func AllModels() []interface{} {
	return []interface{}{
		&models.Conversation{},
		&models.Participant{},
		&models.Message{},
		&models.Attachment{},
		&models.Reaction{},
	}
}

// AutoMigrate creates or updates all messaging tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
