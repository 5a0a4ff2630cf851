package api

import (
	"net/http"
	"strconv"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/lifecycle"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/models"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

func (s *Server) handleListMessages(c *gin.Context) {
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	msgs, next, err := store.ListMessages(c.Request.Context(), s.opts.DB,
		convID, caller(c).UserID, c.Query("before"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": lo.Map(msgs, func(m models.Message, _ int) lifecycle.MessageView {
			return lifecycle.NewMessageView(&m)
		}),
		"nextCursor": next,
	})
}

type sendMessageRequest struct {
	Content     *string             `json:"content"`
	ContentType string              `json:"contentType" binding:"omitempty,oneof=text image audio file"`
	Attachments []attachmentRequest `json:"attachments" binding:"omitempty,dive"`
}

type attachmentRequest struct {
	URL  string `json:"url" binding:"required,url"`
	Mime string `json:"mime" binding:"required"`
	Size int64  `json:"size" binding:"omitempty,gte=0"`
}

func (s *Server) handleSendMessage(c *gin.Context) {
	convID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	msg, err := s.opts.Lifecycle.Send(c.Request.Context(), lifecycle.SendInput{
		ConversationID: convID,
		SenderID:       caller(c).UserID,
		Content:        req.Content,
		ContentType:    req.ContentType,
		Attachments: lo.Map(req.Attachments, func(a attachmentRequest, _ int) store.NewAttachment {
			return store.NewAttachment{URL: a.URL, Mime: a.Mime, Size: a.Size}
		}),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": lifecycle.NewMessageView(msg)})
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (s *Server) handleEditMessage(c *gin.Context) {
	msgID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	msg, err := s.opts.Lifecycle.Edit(c.Request.Context(), msgID, caller(c).UserID, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": lifecycle.NewMessageView(msg)})
}

func (s *Server) handleDeleteMessage(c *gin.Context) {
	msgID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := s.opts.Lifecycle.Delete(c.Request.Context(), msgID, caller(c).UserID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reactRequest struct {
	Reaction string `json:"reaction" binding:"required,max=32"`
}

func (s *Server) handleReact(c *gin.Context) {
	msgID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	r, err := s.opts.Lifecycle.React(c.Request.Context(), msgID, caller(c).UserID, req.Reaction)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reaction": lifecycle.ReactionView{
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Reaction:  r.Reaction,
	}})
}
