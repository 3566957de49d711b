package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/Veraticus/course-planner/internal/catalog"
	"github.com/Veraticus/course-planner/internal/common"
	"github.com/Veraticus/course-planner/internal/config"
	"github.com/Veraticus/course-planner/internal/degree"
	"github.com/Veraticus/course-planner/internal/model"
	"github.com/Veraticus/course-planner/internal/storage"
)

// initStorage opens the configured database and runs migrations. Postgres
// connections are retried while the server comes up.
func initStorage(ctx context.Context) (*storage.Store, error) {
	settings := config.LoadSettings(viper.GetViper())

	var store *storage.Store
	open := func() error {
		var err error
		store, err = storage.Open(settings.DatabaseDriver, settings.DatabaseDSN)
		if err != nil && settings.DatabaseDriver != storage.DriverPostgres {
			return &common.RetryableError{Err: err}
		}
		return err
	}
	opts := common.RetryOptions{MaxAttempts: 5, InitialDelay: 250 * time.Millisecond}
	if err := common.WithRetry(ctx, open, opts); err != nil {
		common.LogError(err, "Failed to open database", common.Fields{
			"driver":       settings.DatabaseDriver,
			"max_attempts": opts.MaxAttempts,
		})
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// loadRequirements prefers a configured file, then the imported table, then
// the built-in program.
func loadRequirements(ctx context.Context, store *storage.Store, settings config.Settings) (model.RequirementTable, error) {
	if settings.RequirementsPath != "" {
		return catalog.LoadRequirements(settings.RequirementsPath, settings.RequirementsSheet)
	}
	table, err := store.GetRequirements(ctx)
	if err != nil {
		return nil, err
	}
	if len(table) > 0 {
		return table, nil
	}
	slog.Debug("Using built-in requirement table")
	return catalog.DefaultRequirements(), nil
}

func loadTopics(settings config.Settings) (catalog.Topics, error) {
	if settings.TopicsPath == "" {
		return catalog.DefaultTopics(), nil
	}
	return catalog.LoadTopics(settings.TopicsPath)
}

// loadClassDatabase reads the catalog directory when one is configured and
// the imported catalog otherwise.
func loadClassDatabase(ctx context.Context, store *storage.Store, settings config.Settings, reqs model.RequirementTable) (model.ClassDatabase, error) {
	var (
		db  model.ClassDatabase
		err error
	)
	if settings.CatalogDir != "" {
		db, err = catalog.LoadClassDatabase(ctx, catalog.Source{
			Requirements: reqs,
			Dir:          settings.CatalogDir,
			Years:        settings.CatalogYears,
			Departments:  settings.CatalogDepts,
		})
	} else {
		db, err = store.GetClassDatabase(ctx)
	}
	if err != nil {
		return nil, err
	}
	if len(db) == 0 {
		return nil, common.NewUserError("no courses loaded; run 'planner import' or set catalog.dir", common.ErrNoCatalog)
	}
	return db, nil
}

// courseFromCode resolves a course code against db, falling back to a bare
// course with only its identity.
func courseFromCode(db model.ClassDatabase, code string) (model.Course, error) {
	code = strings.Join(strings.Fields(strings.ToUpper(code)), " ")
	if c, ok := db.Course(code); ok {
		return c, nil
	}
	subject, number, ok := strings.Cut(code, " ")
	if !ok || subject == "" || number == "" {
		return model.Course{}, fmt.Errorf("%w: course code %q", common.ErrInvalidConfig, code)
	}
	return model.Course{Subject: subject, Number: number}, nil
}

// parseTaken parses "CS 221:4" into a course code and units.
func parseTaken(s string) (string, int, error) {
	code, unitsStr, ok := strings.Cut(s, ":")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q, want CODE:UNITS", common.ErrInvalidConfig, s)
	}
	units, err := strconv.Atoi(strings.TrimSpace(unitsStr))
	if err != nil || units <= 0 {
		return "", 0, fmt.Errorf("%w: bad units in %q", common.ErrInvalidConfig, s)
	}
	return strings.TrimSpace(code), units, nil
}

// applyHistory waives and takes courses on a fresh progress record and
// returns it with the codes of every course it touched.
func applyHistory(reqs model.RequirementTable, db model.ClassDatabase, taken, waived []string) (*degree.Progress, []string, error) {
	progress := degree.NewProgress(reqs)
	var codes []string

	for _, w := range waived {
		course, err := courseFromCode(db, w)
		if err != nil {
			return nil, nil, err
		}
		if err := progress.WaiveCourse(reqs, course); err != nil {
			return nil, nil, common.NewUserError("cannot waive "+course.Code(), err)
		}
		codes = append(codes, course.Code())
	}
	for _, t := range taken {
		code, units, err := parseTaken(t)
		if err != nil {
			return nil, nil, err
		}
		course, err := courseFromCode(db, code)
		if err != nil {
			return nil, nil, err
		}
		progress.TakeCourse(reqs, course, units)
		codes = append(codes, course.Code())
	}
	return progress, codes, nil
}

// withoutCourses drops the given course codes from every quarter.
func withoutCourses(db model.ClassDatabase, codes []string) model.ClassDatabase {
	if len(codes) == 0 {
		return db
	}
	drop := lo.SliceToMap(codes, func(c string) (string, bool) { return c, true })
	out := make(model.ClassDatabase, len(db))
	for q, courses := range db {
		kept := lo.Filter(courses, func(c model.Course, _ int) bool { return !drop[c.Code()] })
		if len(kept) > 0 {
			out[q] = kept
		}
	}
	return out
}
