package store

import (
	"context"
	"fmt"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertReaction sets a user's reaction on a message. A second reaction from
// the same user replaces the first; there is never more than one row per
// (message, user).
func UpsertReaction(ctx context.Context, db *gorm.DB, messageID, userID uint, reaction string) (*models.Reaction, error) {
	if reaction == "" {
		return nil, fmt.Errorf("store: reaction is required: %w", ErrInvalidArgument)
	}
	if len(reaction) > 32 {
		return nil, fmt.Errorf("store: reaction too long: %w", ErrInvalidArgument)
	}

	r := models.Reaction{
		MessageID: messageID,
		UserID:    userID,
		Reaction:  reaction,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg models.Message
		if err := tx.First(&msg, messageID).Error; err != nil {
			return dbErr("load message", err)
		}
		if msg.Deleted {
			return fmt.Errorf("store: message %d is deleted: %w", messageID, ErrConflict)
		}
		if _, err := requireParticipant(tx, msg.ConversationID, userID); err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"reaction", "updated_at"}),
		}).Create(&r).Error; err != nil {
			return dbErr("upsert reaction", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}
