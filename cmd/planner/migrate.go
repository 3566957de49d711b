package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/course-planner/internal/cli"
	"github.com/Veraticus/course-planner/internal/config"
	"github.com/Veraticus/course-planner/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures the database has the catalog, requirement and
saved plan tables the planner needs.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")
	settings := config.LoadSettings(viper.GetViper())

	slog.Info("Starting database migration",
		"driver", settings.DatabaseDriver,
		"status_only", status)

	store, err := storage.Open(settings.DatabaseDriver, settings.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if status {
		// schema_migrations does not exist before the first migration
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			current = 0
		}
		return writeLine(cmd.OutOrStdout(), cli.FormatInfo(
			fmt.Sprintf("Schema version %d of %d", current, storage.ExpectedSchemaVersion)))
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return writeLine(cmd.OutOrStdout(), cli.FormatSuccess("Database migrations completed"))
}
