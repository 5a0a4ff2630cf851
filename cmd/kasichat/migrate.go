package main

import (
	"fmt"
	"io"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/config"
	"github.com/Tshikamisava/kasi-rent-sub001/internal/db"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Runs the schema migration for conversations, participants, messages, attachments and reactions. Safe to run multiple times.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.OutOrStdout(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kasichat.yaml", "path to config file")
	return cmd
}

func runMigrate(out io.Writer, configPath string) error {
	godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	gormDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Running schema migration...")
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Migration complete.")
	return nil
}
