package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Veraticus/course-planner/internal/model"
)

// ErrPlanNotFound is returned when no plan has the requested id.
var ErrPlanNotFound = errors.New("plan not found")

type planCourseRow struct {
	PlanID string `db:"plan_id"`
	model.PlannedCourse
}

// SavePlan stores a plan and its courses. A missing id is filled with a new
// UUID and a zero CreatedAt with the current time.
func (s *Store) SavePlan(ctx context.Context, plan *model.Plan) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePlan(plan); err != nil {
		return err
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO plans (id, name, engine, profile, weight, created_at)
			VALUES (:id, :name, :engine, :profile, :weight, :created_at)
		`, plan); err != nil {
			return fmt.Errorf("failed to save plan: %w", err)
		}
		for _, c := range plan.Courses {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO plan_courses (plan_id, quarter, course, units)
				VALUES (:plan_id, :quarter, :course, :units)
			`, planCourseRow{PlanID: plan.ID, PlannedCourse: c}); err != nil {
				return fmt.Errorf("failed to save plan course %s: %w", c.Course, err)
			}
		}
		return nil
	})
}

// GetPlan returns a saved plan with its courses.
func (s *Store) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var plan model.Plan
	err := s.db.GetContext(ctx, &plan, s.db.Rebind(`
		SELECT id, name, engine, profile, weight, created_at
		FROM plans
		WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	if err := s.db.SelectContext(ctx, &plan.Courses, s.db.Rebind(`
		SELECT quarter, course, units
		FROM plan_courses
		WHERE plan_id = ?
		ORDER BY quarter, course
	`), id); err != nil {
		return nil, fmt.Errorf("failed to get plan courses: %w", err)
	}
	return &plan, nil
}

// ListPlans returns saved plans, newest first, without their courses.
func (s *Store) ListPlans(ctx context.Context) ([]model.Plan, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var plans []model.Plan
	if err := s.db.SelectContext(ctx, &plans, `
		SELECT id, name, engine, profile, weight, created_at
		FROM plans
		ORDER BY created_at DESC, id
	`); err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}
