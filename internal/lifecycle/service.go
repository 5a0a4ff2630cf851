// Package lifecycle validates and persists message mutations and announces
// the resulting events to the realtime gateway. Persistence is the source of
// truth; a failed push is logged and dropped, never surfaced to the caller.
package lifecycle

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

// Service mediates the message lifecycle: send, edit, delete, react, typing.
type Service struct {
	db  *gorm.DB
	bc  gateway.Broadcaster
	log *slog.Logger
}

// New wires a Service. bc may be nil when no gateway is running.
func New(db *gorm.DB, bc gateway.Broadcaster, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, bc: bc, log: log}
}

// SendInput carries one send request.
type SendInput struct {
	ConversationID uint
	SenderID       uint
	Content        *string
	ContentType    string
	Attachments    []store.NewAttachment
}

// Send persists a new message and pushes message.created to the other
// participants. If at least one of their connections accepts the push the
// message advances to delivered before it is returned.
func (s *Service) Send(ctx context.Context, in SendInput) (*models.Message, error) {
	msg, err := store.InsertMessage(ctx, s.db, store.NewMessage{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		ContentType:    in.ContentType,
		Attachments:    in.Attachments,
	})
	if err != nil {
		return nil, err
	}

	accepted := s.announce(ctx, msg.ConversationID, msg.SenderID, gateway.Event{
		Type:           gateway.EventMessageCreated,
		ConversationID: msg.ConversationID,
		Payload:        NewMessageView(msg),
	})
	if accepted > 0 {
		if err := store.MarkDelivered(ctx, s.db, msg.ID); err != nil {
			s.log.Warn("delivery mark failed", "message", msg.ID, "error", err)
		} else {
			msg.Status = models.StatusDelivered
		}
	}
	return msg, nil
}

// Edit replaces a message's content on behalf of its sender and pushes
// message.edited.
func (s *Service) Edit(ctx context.Context, messageID, editorID uint, newContent string) (*models.Message, error) {
	msg, err := store.EditMessage(ctx, s.db, messageID, editorID, newContent)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, msg.ConversationID, editorID, gateway.Event{
		Type:           gateway.EventMessageEdited,
		ConversationID: msg.ConversationID,
		Payload:        NewMessageView(msg),
	})
	return msg, nil
}

// Delete tombstones a message for its sender or a conversation admin and
// pushes message.deleted. Deleting an already-tombstoned message is a
// silent no-op with no event.
func (s *Service) Delete(ctx context.Context, messageID, requesterID uint) (*models.Message, error) {
	msg, tombstoned, err := store.TombstoneMessage(ctx, s.db, messageID, requesterID)
	if err != nil {
		return nil, err
	}
	if tombstoned {
		s.announce(ctx, msg.ConversationID, requesterID, gateway.Event{
			Type:           gateway.EventMessageDeleted,
			ConversationID: msg.ConversationID,
			Payload:        NewMessageView(msg),
		})
	}
	return msg, nil
}

// React upserts the caller's reaction on a message and pushes
// reaction.upserted.
func (s *Service) React(ctx context.Context, messageID, userID uint, reaction string) (*models.Reaction, error) {
	r, err := store.UpsertReaction(ctx, s.db, messageID, userID, reaction)
	if err != nil {
		return nil, err
	}
	msg, err := store.GetMessage(ctx, s.db, messageID)
	if err != nil {
		return r, nil
	}
	s.announce(ctx, msg.ConversationID, userID, gateway.Event{
		Type:           gateway.EventReactionUpserted,
		ConversationID: msg.ConversationID,
		Payload:        ReactionView{MessageID: r.MessageID, UserID: r.UserID, Reaction: r.Reaction},
	})
	return r, nil
}

// Typing announces that the caller is typing. Ephemeral and best-effort:
// nothing is persisted and no delivery is guaranteed.
func (s *Service) Typing(ctx context.Context, conversationID, userID uint) error {
	recipients, err := store.ParticipantIDs(ctx, s.db, conversationID)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return fmt.Errorf("lifecycle: conversation %d: %w", conversationID, store.ErrNotFound)
	}
	if !lo.Contains(recipients, userID) {
		return fmt.Errorf("lifecycle: user %d is not a participant of conversation %d: %w", userID, conversationID, store.ErrForbidden)
	}
	if s.bc != nil {
		s.bc.Broadcast(gateway.Event{
			Type:           gateway.EventTyping,
			ConversationID: conversationID,
			Payload:        typingPayload{UserID: userID, At: time.Now()},
		}, lo.Without(recipients, userID))
	}
	return nil
}

// announce pushes an event to every participant except the actor and
// returns how many connections accepted it. Push failures never propagate;
// REST catch-up is the correctness backstop.
func (s *Service) announce(ctx context.Context, conversationID, actorID uint, ev gateway.Event) int {
	if s.bc == nil {
		return 0
	}
	recipients, err := store.ParticipantIDs(ctx, s.db, conversationID)
	if err != nil {
		s.log.Warn("fan-out skipped", "conversation", conversationID, "type", ev.Type, "error", err)
		return 0
	}
	return s.bc.Broadcast(ev, lo.Without(recipients, actorID))
}
