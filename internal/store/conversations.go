package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// PrivateScopeKey returns the deterministic uniqueness key for a private
// conversation. The pair is normalized so (A, B) and (B, A) resolve to the
// same key.
func PrivateScopeKey(userA, userB uint) string {
	first, second := userA, userB
	if first > second {
		first, second = second, first
	}
	return fmt.Sprintf("private:%d:%d", first, second)
}

// PropertyScopeKey returns the uniqueness key for a property-scoped
// conversation. Threads are unique per (property, initiator): distinct
// initiators get distinct conversations with the same owner.
func PropertyScopeKey(propertyID, initiatorID uint) string {
	return fmt.Sprintf("property:%d:%d", propertyID, initiatorID)
}

// CreateOrGetPrivateConversation finds or atomically creates the single
// private conversation between two users. The returned bool is true when a
// new conversation was created.
func CreateOrGetPrivateConversation(ctx context.Context, db *gorm.DB, userA, userB uint) (*models.Conversation, bool, error) {
	if userA == 0 || userB == 0 {
		return nil, false, fmt.Errorf("store: both user ids are required: %w", ErrInvalidArgument)
	}
	if userA == userB {
		return nil, false, fmt.Errorf("store: cannot converse with yourself: %w", ErrInvalidArgument)
	}

	key := PrivateScopeKey(userA, userB)
	conv := models.Conversation{
		Kind:          models.KindPrivate,
		ScopeKey:      key,
		LastMessageAt: time.Now(),
	}
	members := []member{
		{userID: userA, role: models.RoleParticipant},
		{userID: userB, role: models.RoleParticipant},
	}
	return findOrCreateConversation(ctx, db, key, conv, members)
}

// CreateOrGetPropertyConversation finds or atomically creates the
// conversation a prospective tenant (initiator) holds about a property with
// its owner. The owner joins as conversation admin.
func CreateOrGetPropertyConversation(ctx context.Context, db *gorm.DB, propertyID, initiatorID, ownerID uint, title string) (*models.Conversation, bool, error) {
	if propertyID == 0 || initiatorID == 0 || ownerID == 0 {
		return nil, false, fmt.Errorf("store: property, initiator and owner ids are required: %w", ErrInvalidArgument)
	}
	if initiatorID == ownerID {
		return nil, false, fmt.Errorf("store: initiator cannot be the property owner: %w", ErrInvalidArgument)
	}

	key := PropertyScopeKey(propertyID, initiatorID)
	conv := models.Conversation{
		Kind:          models.KindProperty,
		Title:         title,
		PropertyID:    &propertyID,
		ScopeKey:      key,
		LastMessageAt: time.Now(),
	}
	members := []member{
		{userID: initiatorID, role: models.RoleParticipant},
		{userID: ownerID, role: models.RoleAdmin},
	}
	return findOrCreateConversation(ctx, db, key, conv, members)
}

type member struct {
	userID uint
	role   string
}

// findOrCreateConversation is the idempotent creation core. A concurrent
// create that loses the unique-index race falls back to returning the row
// the winner inserted, never an error.
func findOrCreateConversation(ctx context.Context, db *gorm.DB, key string, conv models.Conversation, members []member) (*models.Conversation, bool, error) {
	var existing models.Conversation
	err := db.WithContext(ctx).Where("scope_key = ?", key).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, dbErr("find conversation", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, m := range members {
			p := models.Participant{
				ConversationID: conv.ID,
				UserID:         m.userID,
				Role:           m.role,
				Active:         true,
				LastReadAt:     now,
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			// Lost the race; the conversation now exists.
			if ferr := db.WithContext(ctx).Where("scope_key = ?", key).First(&existing).Error; ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, dbErr("create conversation", err)
	}
	return &conv, true, nil
}

// AddParticipant adds a user to a conversation, or reactivates a membership
// that was previously deactivated. Safe to call repeatedly.
func AddParticipant(ctx context.Context, db *gorm.DB, conversationID, userID uint, role string) (*models.Participant, error) {
	if conversationID == 0 || userID == 0 {
		return nil, fmt.Errorf("store: conversation and user ids are required: %w", ErrInvalidArgument)
	}
	if role == "" {
		role = models.RoleParticipant
	}

	var p models.Participant
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.First(&conv, conversationID).Error; err != nil {
			return err
		}
		res := tx.Where("conversation_id = ? AND user_id = ?", conversationID, userID).First(&p)
		if res.Error == nil {
			if p.Active {
				return nil
			}
			p.Active = true
			return tx.Model(&models.Participant{}).
				Where("conversation_id = ? AND user_id = ?", conversationID, userID).
				Update("active", true).Error
		}
		if res.Error != gorm.ErrRecordNotFound {
			return res.Error
		}
		p = models.Participant{
			ConversationID: conversationID,
			UserID:         userID,
			Role:           role,
			Active:         true,
			LastReadAt:     time.Now(),
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, dbErr("add participant", err)
	}
	return &p, nil
}

// DeactivateParticipant flags a membership inactive. The row stays so
// history attribution survives; there is no hard delete while the
// conversation exists.
func DeactivateParticipant(ctx context.Context, db *gorm.DB, conversationID, userID uint) error {
	res := db.WithContext(ctx).Model(&models.Participant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("active", false)
	if res.Error != nil {
		return dbErr("deactivate participant", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store: deactivate participant: %w", ErrNotFound)
	}
	return nil
}

// ConversationSummary is one row of a user's conversation list, annotated
// with that user's own read state.
type ConversationSummary struct {
	Conversation models.Conversation
	UnreadCount  int
	Role         string
}

// ListConversationsForUser returns the conversations the user actively
// participates in, newest activity first.
func ListConversationsForUser(ctx context.Context, db *gorm.DB, userID uint) ([]ConversationSummary, error) {
	if userID == 0 {
		return nil, fmt.Errorf("store: user id is required: %w", ErrInvalidArgument)
	}

	var parts []models.Participant
	if err := db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Find(&parts).Error; err != nil {
		return nil, dbErr("list memberships", err)
	}
	if len(parts) == 0 {
		return []ConversationSummary{}, nil
	}

	ids := lo.Map(parts, func(p models.Participant, _ int) uint { return p.ConversationID })
	byConv := lo.KeyBy(parts, func(p models.Participant) uint { return p.ConversationID })

	var convs []models.Conversation
	if err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("last_message_at DESC").
		Find(&convs).Error; err != nil {
		return nil, dbErr("list conversations", err)
	}

	return lo.Map(convs, func(c models.Conversation, _ int) ConversationSummary {
		p := byConv[c.ID]
		return ConversationSummary{Conversation: c, UnreadCount: p.UnreadCount, Role: p.Role}
	}), nil
}

// ParticipantIDs returns the user ids of every active participant of a
// conversation. The gateway uses this set to fan out without re-querying per
// event.
func ParticipantIDs(ctx context.Context, db *gorm.DB, conversationID uint) ([]uint, error) {
	var ids []uint
	if err := db.WithContext(ctx).Model(&models.Participant{}).
		Where("conversation_id = ? AND active = ?", conversationID, true).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, dbErr("list participant ids", err)
	}
	return ids, nil
}

// requireParticipant loads the conversation and the caller's active
// membership inside tx. A missing conversation is ErrNotFound; a missing or
// inactive membership is ErrForbidden.
func requireParticipant(tx *gorm.DB, conversationID, userID uint) (*models.Participant, error) {
	var conv models.Conversation
	if err := tx.First(&conv, conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("store: conversation %d: %w", conversationID, ErrNotFound)
		}
		return nil, dbErr("load conversation", err)
	}
	var p models.Participant
	err := tx.Where("conversation_id = ? AND user_id = ? AND active = ?", conversationID, userID, true).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("store: user %d is not a participant of conversation %d: %w", userID, conversationID, ErrForbidden)
		}
		return nil, dbErr("load participant", err)
	}
	return &p, nil
}
