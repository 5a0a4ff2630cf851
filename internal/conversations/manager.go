// Package conversations creates and lists conversations and maintains
// per-participant read state.
package conversations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/gateway"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/models"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/store"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Manager is the conversation-level API: idempotent creation, listing with
// unread annotation, and read receipts.
type Manager struct {
	db  *gorm.DB
	dir PropertyDirectory
	bc  gateway.Broadcaster
	log *slog.Logger
}

// NewManager wires a Manager. bc may be nil when no realtime gateway is
// running (CLI maintenance commands).
func NewManager(db *gorm.DB, dir PropertyDirectory, bc gateway.Broadcaster, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{db: db, dir: dir, bc: bc, log: log}
}

// CreateOrGetPrivate resolves the single private conversation between the
// caller and a peer, creating it on first contact. (A, B) and (B, A) always
// yield the same conversation.
func (m *Manager) CreateOrGetPrivate(ctx context.Context, callerID, peerID uint) (*models.Conversation, bool, error) {
	return store.CreateOrGetPrivateConversation(ctx, m.db, callerID, peerID)
}

// CreateOrGetProperty resolves the caller's conversation about a property
// with its owner, creating it on first contact. Ownership comes from the
// property listing service; a property the directory does not know fails
// with NotFound.
func (m *Manager) CreateOrGetProperty(ctx context.Context, callerID, propertyID uint) (*models.Conversation, bool, error) {
	if m.dir == nil {
		return nil, false, fmt.Errorf("conversations: no property directory configured: %w", store.ErrInvalidArgument)
	}
	prop, err := m.dir.Property(ctx, propertyID)
	if err != nil {
		return nil, false, fmt.Errorf("conversations: resolve property %d: %w", propertyID, err)
	}
	return store.CreateOrGetPropertyConversation(ctx, m.db, propertyID, callerID, prop.OwnerID, prop.Title)
}

// List returns the caller's conversations, most recent activity first, each
// annotated with the caller's unread count.
func (m *Manager) List(ctx context.Context, userID uint) ([]store.ConversationSummary, error) {
	return store.ListConversationsForUser(ctx, m.db, userID)
}

// MarkRead acknowledges the conversation for the caller and announces the
// advanced receipt to the other participants' live connections. Safe to
// call repeatedly.
func (m *Manager) MarkRead(ctx context.Context, conversationID, userID uint) (time.Time, error) {
	readAt, err := store.AdvanceReadReceipt(ctx, m.db, conversationID, userID)
	if err != nil {
		return time.Time{}, err
	}

	if m.bc != nil {
		recipients, err := store.ParticipantIDs(ctx, m.db, conversationID)
		if err != nil {
			// The receipt is persisted; the push is best-effort.
			m.log.Warn("read receipt fan-out skipped", "conversation", conversationID, "error", err)
			return readAt, nil
		}
		m.bc.Broadcast(gateway.Event{
			Type:           gateway.EventReadAdvanced,
			ConversationID: conversationID,
			Payload: readReceiptPayload{
				UserID: userID,
				ReadAt: readAt,
			},
		}, lo.Without(recipients, userID))
	}
	return readAt, nil
}

// readReceiptPayload is the read.advanced event body.
type readReceiptPayload struct {
	UserID uint      `json:"userId"`
	ReadAt time.Time `json:"readAt"`
}
