// Package testutil provides test helpers shared by the planner's packages.
package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/course-planner/internal/model"
	"github.com/Veraticus/course-planner/internal/storage"
)

// TestDB is a migrated in-memory database for one test.
type TestDB struct {
	Store *storage.Store
	t     *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.Store) error
	Courses        []model.Course
	Requirements   model.RequirementTable
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a migrated in-memory database seeded as
// described by opts. The database is closed when the test finishes.
//
// Example:
//
//	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
//		Courses: []model.Course{testutil.Course("CS 221", 4, 1, 5)},
//	})
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.Open(storage.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if len(opts.Courses) > 0 {
		if err := store.SaveCourses(ctx, opts.Courses); err != nil {
			t.Fatalf("failed to seed courses: %v", err)
		}
	}
	if len(opts.Requirements) > 0 {
		if err := store.SaveRequirements(ctx, opts.Requirements); err != nil {
			t.Fatalf("failed to seed requirements: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{Store: store, t: t}
}

// MustGetPlan returns the saved plan with the given id or fails the test.
func (db *TestDB) MustGetPlan(id string) *model.Plan {
	db.t.Helper()
	plan, err := db.Store.GetPlan(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to get plan %s: %v", id, err)
	}
	return plan
}

// Course builds a fixed-unit course offered in the given quarters.
func Course(code string, units int, quarters ...int) model.Course {
	subject, number, _ := strings.Cut(code, " ")
	return model.Course{
		Subject:  subject,
		Number:   number,
		Name:     code,
		Quarters: quarters,
		UnitsMin: units,
		UnitsMax: units,
	}
}
