package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/Veraticus/course-planner/internal/model"
)

const upsertCourse = `
	INSERT INTO courses (subject, number, name, category, description, instructor, units_min, units_max, reward)
	VALUES (:subject, :number, :name, :category, :description, :instructor, :units_min, :units_max, :reward)
	ON CONFLICT (subject, number) DO UPDATE SET
		name = excluded.name,
		category = excluded.category,
		description = excluded.description,
		instructor = excluded.instructor,
		units_min = excluded.units_min,
		units_max = excluded.units_max,
		reward = excluded.reward`

type courseQuarter struct {
	Subject string `db:"subject"`
	Number  string `db:"number"`
	Quarter int    `db:"quarter"`
}

// SaveCourses inserts or replaces courses and their offered quarters.
func (s *Store) SaveCourses(ctx context.Context, courses []model.Course) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCourses(courses); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, c := range courses {
			if _, err := tx.NamedExecContext(ctx, upsertCourse, c); err != nil {
				return fmt.Errorf("failed to save course %s: %w", c.Code(), err)
			}
			if _, err := tx.ExecContext(ctx,
				tx.Rebind(`DELETE FROM course_quarters WHERE subject = ? AND number = ?`),
				c.Subject, c.Number); err != nil {
				return fmt.Errorf("failed to clear quarters of %s: %w", c.Code(), err)
			}
			for _, q := range lo.Uniq(c.Quarters) {
				if _, err := tx.ExecContext(ctx,
					tx.Rebind(`INSERT INTO course_quarters (subject, number, quarter) VALUES (?, ?, ?)`),
					c.Subject, c.Number, q); err != nil {
					return fmt.Errorf("failed to save quarter %d of %s: %w", q, c.Code(), err)
				}
			}
		}
		return nil
	})
}

// GetCourses returns every stored course ordered by subject and number.
func (s *Store) GetCourses(ctx context.Context) ([]model.Course, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var courses []model.Course
	if err := s.db.SelectContext(ctx, &courses, `
		SELECT subject, number, name, category, description, instructor, units_min, units_max, reward
		FROM courses
		ORDER BY subject, number
	`); err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}

	var quarters []courseQuarter
	if err := s.db.SelectContext(ctx, &quarters, `
		SELECT subject, number, quarter
		FROM course_quarters
		ORDER BY subject, number, quarter
	`); err != nil {
		return nil, fmt.Errorf("failed to get course quarters: %w", err)
	}

	byCode := lo.GroupBy(quarters, func(q courseQuarter) string { return q.Subject + " " + q.Number })
	for i := range courses {
		courses[i].Quarters = lo.Map(byCode[courses[i].Code()], func(q courseQuarter, _ int) int { return q.Quarter })
	}
	return courses, nil
}

// GetClassDatabase returns the stored catalog indexed by quarter.
func (s *Store) GetClassDatabase(ctx context.Context) (model.ClassDatabase, error) {
	courses, err := s.GetCourses(ctx)
	if err != nil {
		return nil, err
	}
	return model.NewClassDatabase(courses), nil
}
