package api

import (
	"net/http"
	"time"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/models"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// conversationView is the wire shape of one conversation-list entry.
type conversationView struct {
	ID            uint      `json:"id"`
	Kind          string    `json:"kind"`
	Title         string    `json:"title,omitempty"`
	PropertyID    *uint     `json:"propertyId,omitempty"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int       `json:"unreadCount"`
	Role          string    `json:"role"`
}

func newConversationView(s store.ConversationSummary) conversationView {
	return conversationView{
		ID:            s.Conversation.ID,
		Kind:          s.Conversation.Kind,
		Title:         s.Conversation.Title,
		PropertyID:    s.Conversation.PropertyID,
		LastMessageAt: s.Conversation.LastMessageAt,
		UnreadCount:   s.UnreadCount,
		Role:          s.Role,
	}
}

func (s *Server) handleListConversations(c *gin.Context) {
	list, err := s.opts.Manager.List(c.Request.Context(), caller(c).UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conversations": lo.Map(list, func(cs store.ConversationSummary, _ int) conversationView {
			return newConversationView(cs)
		}),
	})
}

// createConversationRequest is a tagged variant: private needs a peer,
// property-scoped needs a property. The kind decides which fields apply.
type createConversationRequest struct {
	Kind       string `json:"kind" binding:"required,oneof=private property"`
	PeerID     uint   `json:"peerId"`
	PropertyID uint   `json:"propertyId"`
}

func (s *Server) handleCreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	me := caller(c).UserID
	var (
		conv    *models.Conversation
		created bool
		err     error
	)
	switch req.Kind {
	case models.KindPrivate:
		if req.PeerID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "peerId is required for private conversations"})
			return
		}
		conv, created, err = s.opts.Manager.CreateOrGetPrivate(ctx, me, req.PeerID)
	case models.KindProperty:
		if req.PropertyID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "propertyId is required for property conversations"})
			return
		}
		conv, created, err = s.opts.Manager.CreateOrGetProperty(ctx, me, req.PropertyID)
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"conversation": conversationView{
		ID:            conv.ID,
		Kind:          conv.Kind,
		Title:         conv.Title,
		PropertyID:    conv.PropertyID,
		LastMessageAt: conv.LastMessageAt,
	}})
}

func (s *Server) handleMarkRead(c *gin.Context) {
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}
	readAt, err := s.opts.Manager.MarkRead(c.Request.Context(), convID, caller(c).UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"readAt": readAt})
}

func (s *Server) handleTyping(c *gin.Context) {
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.opts.Lifecycle.Typing(c.Request.Context(), convID, caller(c).UserID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
