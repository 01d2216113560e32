// Package cmd provides command-line interface functionality for the swiftscope application.
/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"time"

	"swiftscope/internal/adapter/outbound/repository"
	"swiftscope/internal/application/common/slogger"

	"github.com/spf13/cobra"
)

// newMigrateCmd creates and returns the migrate command.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Run database migrations to set up or update the database schema.

This command creates the outline storage schema, tables and indexes the
workers write to. All statements are idempotent, so re-running it on an
up-to-date database is safe.

Configuration for database connection is loaded from config files and environment variables.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigrate()
		},
	}
}

// runMigrate connects to the database and applies the schema.
func runMigrate() error {
	configureLogging("stdout")
	cfg := GetConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbPool, err := setupDatabaseConnection(cfg)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if err := repository.Migrate(ctx, dbPool); err != nil {
		return err
	}

	slogger.InfoNoCtx("Database schema is up to date", slogger.Fields{
		"database": cfg.Database.Name,
	})
	return nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newMigrateCmd())
}
