package lifecycle

import (
	"time"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/models"
	"github.com/samber/lo"
)

// MessageView is the wire shape of a message, shared by push events and the
// REST history endpoint. A tombstoned message keeps its slot but exposes no
// content or attachments.
type MessageView struct {
	ID             uint             `json:"id"`
	ConversationID uint             `json:"conversationId"`
	SenderID       uint             `json:"senderId"`
	Content        *string          `json:"content"`
	ContentType    string           `json:"contentType"`
	Status         string           `json:"status"`
	Edited         bool             `json:"edited"`
	Deleted        bool             `json:"deleted"`
	CreatedAt      time.Time        `json:"createdAt"`
	Attachments    []AttachmentView `json:"attachments"`
	Reactions      []ReactionView   `json:"reactions"`
}

// AttachmentView is the wire shape of an attachment.
type AttachmentView struct {
	ID   uint   `json:"id"`
	URL  string `json:"url"`
	Mime string `json:"mime"`
	Size int64  `json:"size"`
}

// ReactionView is the wire shape of a reaction.
type ReactionView struct {
	MessageID uint   `json:"messageId"`
	UserID    uint   `json:"userId"`
	Reaction  string `json:"reaction"`
}

// NewMessageView projects a stored message for clients.
func NewMessageView(m *models.Message) MessageView {
	v := MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		ContentType:    m.ContentType,
		Status:         m.Status,
		Edited:         m.Edited,
		Deleted:        m.Deleted,
		CreatedAt:      m.CreatedAt,
		Attachments:    []AttachmentView{},
		Reactions: lo.Map(m.Reactions, func(r models.Reaction, _ int) ReactionView {
			return ReactionView{MessageID: r.MessageID, UserID: r.UserID, Reaction: r.Reaction}
		}),
	}
	if !m.Deleted {
		v.Attachments = lo.Map(m.Attachments, func(a models.Attachment, _ int) AttachmentView {
			return AttachmentView{ID: a.ID, URL: a.URL, Mime: a.Mime, Size: a.Size}
		})
	}
	return v
}

// typingPayload is the typing event body. Typing is ephemeral: never
// persisted, never guaranteed to arrive.
type typingPayload struct {
	UserID uint      `json:"userId"`
	At     time.Time `json:"at"`
}
