// Package api exposes the REST surface and the realtime event stream of the
// messaging subsystem.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/conversations"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/gateway"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/lifecycle"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Opts holds the collaborators of the HTTP server.
type Opts struct {
	DB         *gorm.DB
	Registry   *gateway.Registry
	Manager    *conversations.Manager
	Lifecycle  *lifecycle.Service
	AuthSecret []byte
	Log        *slog.Logger
}

// Server serves the messaging REST API and SSE stream.
type Server struct {
	router *gin.Engine
	opts   Opts
}

// New builds the server and its routes.
func New(opts Opts) (*Server, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("api: db is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("api: registry is required")
	}
	if opts.Manager == nil || opts.Lifecycle == nil {
		return nil, fmt.Errorf("api: manager and lifecycle are required")
	}
	if len(opts.AuthSecret) == 0 {
		return nil, fmt.Errorf("api: auth secret is required")
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{router: router, opts: opts}
	s.registerRoutes()
	return s, nil
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	if port <= 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	s.opts.Log.Info("messaging api listening", "port", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
