package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/api"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/config"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/conversations"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/db"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/gateway"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/lifecycle"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/reconcile"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the messaging API and event stream",
		Long:  "Serves the conversation REST API and the SSE event stream, and runs the counter reconciliation sweep in the background.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kasichat.yaml", "path to config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override the configured listen port")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	log := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), nil))

	gormDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	var dir conversations.PropertyDirectory
	if cfg.Listings.BaseURL != "" {
		dir = conversations.NewHTTPDirectory(cfg.Listings.BaseURL)
	}

	registry := gateway.NewRegistry(log)
	srv, err := api.New(api.Opts{
		DB:         gormDB,
		Registry:   registry,
		Manager:    conversations.NewManager(gormDB, dir, registry, log),
		Lifecycle:  lifecycle.New(gormDB, registry, log),
		AuthSecret: []byte(cfg.Auth.Secret),
		Log:        log,
	})
	if err != nil {
		return err
	}

	go reconcile.NewRunner(gormDB, cfg.Reconcile.Schedule, log).Run(ctx)

	return srv.Start(ctx, port)
}

// openDatabase connects using the configured driver.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Driver == "sqlite" {
		return db.ConnectSQLite(cfg.Database.Path)
	}
	return db.Connect(cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
}
