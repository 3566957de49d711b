// Package storage provides the data persistence layer for the course planner.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/course-planner/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrEmptySlice    = errors.New("slice cannot be empty")
	ErrInvalidCourse = errors.New("invalid course")
	ErrInvalidPlan   = errors.New("invalid plan")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateCourses(courses []model.Course) error {
	if len(courses) == 0 {
		return fmt.Errorf("%w: courses", ErrEmptySlice)
	}
	for i, c := range courses {
		if err := validateCourse(c); err != nil {
			return fmt.Errorf("course at index %d: %w", i, err)
		}
	}
	return nil
}

func validateCourse(c model.Course) error {
	if c.Subject == "" || c.Number == "" {
		return fmt.Errorf("%w: missing subject or number", ErrInvalidCourse)
	}
	if c.UnitsMin < 0 || c.UnitsMax < c.UnitsMin {
		return fmt.Errorf("%w: %s has unit range %d-%d", ErrInvalidCourse, c.Code(), c.UnitsMin, c.UnitsMax)
	}
	return nil
}

func validateRequirements(table model.RequirementTable) error {
	if len(table) == 0 {
		return fmt.Errorf("%w: requirements", ErrEmptySlice)
	}
	for i, row := range table {
		if row.Course == "" || row.Category == "" {
			return fmt.Errorf("requirement at index %d: %w", i, ErrEmptyString)
		}
	}
	return nil
}

func validatePlan(plan *model.Plan) error {
	if plan == nil {
		return fmt.Errorf("%w: plan", ErrNilParameter)
	}
	if plan.Engine == "" {
		return fmt.Errorf("%w: missing engine", ErrInvalidPlan)
	}
	for _, c := range plan.Courses {
		if c.Course == "" || c.Units <= 0 {
			return fmt.Errorf("%w: bad course row %+v", ErrInvalidPlan, c)
		}
	}
	return nil
}
