package api

import (
	"net/http"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/db"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up the REST surface and the SSE stream. Everything
// except the health check requires an authenticated caller.
func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	authed := s.router.Group("/", s.requireAuth())
	authed.GET("/conversations", s.handleListConversations)
	authed.POST("/conversations", s.handleCreateConversation)
	authed.GET("/conversations/:id/messages", s.handleListMessages)
	authed.POST("/conversations/:id/messages", s.handleSendMessage)
	authed.POST("/conversations/:id/read", s.handleMarkRead)
	authed.POST("/conversations/:id/typing", s.handleTyping)
	authed.PUT("/messages/:id", s.handleEditMessage)
	authed.DELETE("/messages/:id", s.handleDeleteMessage)
	authed.POST("/messages/:id/reactions", s.handleReact)
	authed.GET("/events", s.handleEvents)
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := db.Ping(s.opts.DB); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
