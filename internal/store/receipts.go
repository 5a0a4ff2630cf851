package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/models"
	"gorm.io/gorm"
)

// readPromotionSQL flips messages to read once no other active participant
// has a last_read_at older than the message. Correlated per message, so a
// sender's own receipt never advances their own messages by itself.
const readPromotionSQL = `
UPDATE messages SET status = ?
WHERE conversation_id = ? AND status <> ?
AND NOT EXISTS (
    SELECT 1 FROM participants p
    WHERE p.conversation_id = messages.conversation_id
      AND p.user_id <> messages.sender_id
      AND p.active = ?
      AND p.last_read_at < messages.created_at
)`

// AdvanceReadReceipt acknowledges everything in the conversation for one
// participant: last_read_at moves to now, the unread counter resets to zero,
// and any message now read by every other participant is promoted to read.
// Idempotent; other participants' counters are untouched.
func AdvanceReadReceipt(ctx context.Context, db *gorm.DB, conversationID, userID uint) (time.Time, error) {
	if conversationID == 0 || userID == 0 {
		return time.Time{}, fmt.Errorf("store: conversation and user ids are required: %w", ErrInvalidArgument)
	}

	now := time.Now()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := requireParticipant(tx, conversationID, userID); err != nil {
			return err
		}
		if err := tx.Model(&models.Participant{}).
			Where("conversation_id = ? AND user_id = ?", conversationID, userID).
			Updates(map[string]interface{}{
				"last_read_at": now,
				"unread_count": 0,
			}).Error; err != nil {
			return dbErr("advance read receipt", err)
		}
		if err := tx.Exec(readPromotionSQL,
			models.StatusRead, conversationID, models.StatusRead, true).Error; err != nil {
			return dbErr("promote read messages", err)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return now, nil
}
