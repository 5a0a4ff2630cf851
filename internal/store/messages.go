package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/models"
	"gorm.io/gorm"
)

// Pagination limits for ListMessages.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// NewMessage carries the input for InsertMessage.
type NewMessage struct {
	ConversationID uint
	SenderID       uint
	Content        *string
	ContentType    string
	Attachments    []NewAttachment
}

// NewAttachment describes a file to persist alongside its message.
type NewAttachment struct {
	URL  string
	Mime string
	Size int64
}

// InsertMessage persists a message with its attachments, increments every
// other participant's unread counter and bumps the conversation's
// last_message_at, all in one transaction.
func InsertMessage(ctx context.Context, db *gorm.DB, in NewMessage) (*models.Message, error) {
	if in.ConversationID == 0 || in.SenderID == 0 {
		return nil, fmt.Errorf("store: conversation and sender ids are required: %w", ErrInvalidArgument)
	}
	if (in.Content == nil || *in.Content == "") && len(in.Attachments) == 0 {
		return nil, fmt.Errorf("store: message needs content or attachments: %w", ErrInvalidArgument)
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = models.ContentText
	}
	switch contentType {
	case models.ContentText, models.ContentImage, models.ContentAudio, models.ContentFile:
	default:
		return nil, fmt.Errorf("store: unknown content type %q: %w", contentType, ErrInvalidArgument)
	}

	msg := models.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		ContentType:    contentType,
		Status:         models.StatusSent,
		CreatedAt:      time.Now(),
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := requireParticipant(tx, in.ConversationID, in.SenderID); err != nil {
			return err
		}
		if err := tx.Create(&msg).Error; err != nil {
			return dbErr("insert message", err)
		}
		for _, a := range in.Attachments {
			att := models.Attachment{
				MessageID: msg.ID,
				URL:       a.URL,
				Mime:      a.Mime,
				Size:      a.Size,
			}
			if err := tx.Create(&att).Error; err != nil {
				return dbErr("insert attachment", err)
			}
			msg.Attachments = append(msg.Attachments, att)
		}
		if err := tx.Model(&models.Participant{}).
			Where("conversation_id = ? AND user_id <> ?", in.ConversationID, in.SenderID).
			Update("unread_count", gorm.Expr("unread_count + 1")).Error; err != nil {
			return dbErr("bump unread counters", err)
		}
		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", in.ConversationID).
			Update("last_message_at", msg.CreatedAt).Error; err != nil {
			return dbErr("bump last_message_at", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetMessage loads one message with its attachments and reactions.
func GetMessage(ctx context.Context, db *gorm.DB, messageID uint) (*models.Message, error) {
	var msg models.Message
	err := db.WithContext(ctx).
		Preload("Attachments").
		Preload("Reactions").
		First(&msg, messageID).Error
	if err != nil {
		return nil, dbErr("load message", err)
	}
	return &msg, nil
}

// EditMessage replaces a message's content. Only the original sender may
// edit, and a tombstoned message can no longer change.
func EditMessage(ctx context.Context, db *gorm.DB, messageID, editorID uint, newContent string) (*models.Message, error) {
	if newContent == "" {
		return nil, fmt.Errorf("store: new content is required: %w", ErrInvalidArgument)
	}

	var msg models.Message
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&msg, messageID).Error; err != nil {
			return dbErr("load message", err)
		}
		if msg.SenderID != editorID {
			return fmt.Errorf("store: only the sender may edit message %d: %w", messageID, ErrForbidden)
		}
		if msg.Deleted {
			return fmt.Errorf("store: message %d is deleted: %w", messageID, ErrConflict)
		}
		if err := tx.Model(&models.Message{}).Where("id = ?", messageID).
			Updates(map[string]interface{}{
				"content": newContent,
				"edited":  true,
			}).Error; err != nil {
			return dbErr("edit message", err)
		}
		msg.Content = &newContent
		msg.Edited = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// TombstoneMessage soft-deletes a message: the content is cleared but the
// row keeps its slot in ordering. Allowed for the sender or a conversation
// admin. Tombstoning an already-deleted message is a no-op; the returned
// bool is false in that case.
func TombstoneMessage(ctx context.Context, db *gorm.DB, messageID, requesterID uint) (*models.Message, bool, error) {
	var msg models.Message
	tombstoned := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&msg, messageID).Error; err != nil {
			return dbErr("load message", err)
		}
		p, err := requireParticipant(tx, msg.ConversationID, requesterID)
		if err != nil {
			return err
		}
		if msg.SenderID != requesterID && p.Role != models.RoleAdmin {
			return fmt.Errorf("store: only the sender or an admin may delete message %d: %w", messageID, ErrForbidden)
		}
		if msg.Deleted {
			return nil
		}
		if err := tx.Model(&models.Message{}).Where("id = ?", messageID).
			Updates(map[string]interface{}{
				"deleted": true,
				"content": nil,
			}).Error; err != nil {
			return dbErr("tombstone message", err)
		}
		msg.Deleted = true
		msg.Content = nil
		tombstoned = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &msg, tombstoned, nil
}

// MarkDelivered advances a message from sent to delivered. The progression
// is monotonic, so a message already delivered or read is left alone.
func MarkDelivered(ctx context.Context, db *gorm.DB, messageID uint) error {
	err := db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND status = ?", messageID, models.StatusSent).
		Update("status", models.StatusDelivered).Error
	if err != nil {
		return dbErr("mark delivered", err)
	}
	return nil
}

// ListMessages returns a page of a conversation's messages, newest first,
// ordered by (created_at, id) descending. beforeCursor is an opaque cursor
// from a previous page, or empty for the newest page. nextCursor is empty
// when the page was not full.
func ListMessages(ctx context.Context, db *gorm.DB, conversationID, userID uint, beforeCursor string, limit int) ([]models.Message, string, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if _, err := requireParticipant(db.WithContext(ctx), conversationID, userID); err != nil {
		return nil, "", err
	}

	q := db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Preload("Attachments").
		Preload("Reactions").
		Order("created_at DESC, id DESC").
		Limit(limit)

	if beforeCursor != "" {
		ts, id, err := DecodeCursor(beforeCursor)
		if err != nil {
			return nil, "", err
		}
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", ts, ts, id)
	}

	var msgs []models.Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, "", dbErr("list messages", err)
	}

	next := ""
	if len(msgs) == limit {
		last := msgs[len(msgs)-1]
		next = EncodeCursor(last.CreatedAt, last.ID)
	}
	return msgs, next, nil
}
