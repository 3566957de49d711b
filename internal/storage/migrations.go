package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sqlx.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Course catalog",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS courses (
				subject TEXT NOT NULL,
				number TEXT NOT NULL,
				name TEXT NOT NULL DEFAULT '',
				category TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				instructor TEXT NOT NULL DEFAULT '',
				units_min INTEGER NOT NULL,
				units_max INTEGER NOT NULL,
				reward DOUBLE PRECISION NOT NULL DEFAULT 0,
				PRIMARY KEY (subject, number)
			)`,
			`CREATE TABLE IF NOT EXISTS course_quarters (
				subject TEXT NOT NULL,
				number TEXT NOT NULL,
				quarter INTEGER NOT NULL,
				PRIMARY KEY (subject, number, quarter),
				FOREIGN KEY (subject, number) REFERENCES courses(subject, number)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_course_quarters_quarter ON course_quarters(quarter)`,
		),
	},
	{
		Version:     2,
		Description: "Requirement table",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS requirements (
				position INTEGER PRIMARY KEY,
				course TEXT NOT NULL,
				category TEXT NOT NULL,
				subcategory TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_requirements_course ON requirements(course)`,
		),
	},
	{
		Version:     3,
		Description: "Saved plans",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS plans (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL DEFAULT '',
				engine TEXT NOT NULL,
				profile TEXT NOT NULL DEFAULT '',
				weight DOUBLE PRECISION NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS plan_courses (
				plan_id TEXT NOT NULL,
				quarter INTEGER NOT NULL,
				course TEXT NOT NULL,
				units INTEGER NOT NULL,
				PRIMARY KEY (plan_id, quarter, course),
				FOREIGN KEY (plan_id) REFERENCES plans(id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at)`,
		),
	},
}

func execAll(queries ...string) func(*sqlx.Tx) error {
	return func(tx *sqlx.Tx) error {
		for _, query := range queries {
			if _, err := tx.Exec(query); err != nil {
				return fmt.Errorf("failed to execute query '%s': %w", query, err)
			}
		}
		return nil
	}
}

// Migrate applies every migration newer than the recorded schema version.
// Applied versions are recorded in the schema_migrations table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		err := s.withTx(ctx, func(tx *sqlx.Tx) error {
			if upErr := migration.Up(tx); upErr != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
			}
			_, execErr := tx.ExecContext(ctx,
				tx.Rebind(`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`),
				migration.Version, migration.Description, time.Now().UTC())
			if execErr != nil {
				return fmt.Errorf("failed to update schema version: %w", execErr)
			}
			return nil
		})
		if err != nil {
			return err
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, or 0.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
