package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Veraticus/course-planner/internal/model"
)

type requirementRow struct {
	model.Requirement
	Position int `db:"position"`
}

// SaveRequirements replaces the stored requirement table. Row order is kept.
func (s *Store) SaveRequirements(ctx context.Context, table model.RequirementTable) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRequirements(table); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM requirements`); err != nil {
			return fmt.Errorf("failed to clear requirements: %w", err)
		}
		for i, row := range table {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO requirements (position, course, category, subcategory)
				VALUES (:position, :course, :category, :subcategory)
			`, requirementRow{Requirement: row, Position: i}); err != nil {
				return fmt.Errorf("failed to save requirement %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetRequirements returns the stored requirement table, empty if none was
// imported.
func (s *Store) GetRequirements(ctx context.Context) (model.RequirementTable, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var rows []model.Requirement
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT course, category, subcategory
		FROM requirements
		ORDER BY position
	`); err != nil {
		return nil, fmt.Errorf("failed to get requirements: %w", err)
	}
	return model.RequirementTable(rows), nil
}
