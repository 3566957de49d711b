// Package catalog loads course offerings, requirement tables and topic
// course sets from files.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/course-planner/internal/model"
)

// Catalog errors.
var (
	ErrMissingColumn   = errors.New("missing column")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

//go:embed data/cs_ai_requirements.csv
var defaultRequirementsCSV []byte

//go:embed data/topics.yaml
var defaultTopicsYAML []byte

var requirementColumns = []string{"course", "category", "subcategory"}

// DefaultRequirements returns the built-in CS AI track requirement table.
func DefaultRequirements() model.RequirementTable {
	table, err := ReadRequirementsCSV(bytes.NewReader(defaultRequirementsCSV))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded requirements are invalid: %v", err))
	}
	return table
}

// LoadRequirements reads a requirement table from a .csv or .xlsx file. For
// spreadsheets the named sheet is used, or the first sheet when empty.
func LoadRequirements(path, sheet string) (model.RequirementTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open requirements file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return ReadRequirementsCSV(f)
	case ".xlsx", ".xlsm":
		return loadRequirementsXLSX(path, sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
}

// ReadRequirementsCSV parses a requirement table with a
// Course,Category,Subcategory header.
func ReadRequirementsCSV(r io.Reader) (model.RequirementTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements: %w", err)
	}
	return parseRequirementRows(rows)
}

func loadRequirementsXLSX(path, sheet string) (model.RequirementTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %q: %w", sheet, err)
	}
	return parseRequirementRows(rows)
}

func parseRequirementRows(rows [][]string) (model.RequirementTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty requirements table", ErrMissingColumn)
	}
	cols, err := headerIndex(rows[0], requirementColumns)
	if err != nil {
		return nil, err
	}

	var table model.RequirementTable
	for i, row := range rows[1:] {
		code := cell(row, cols["course"])
		if code == "" {
			continue
		}
		category, err := model.ParseRequirementCategory(cell(row, cols["category"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		table = append(table, model.Requirement{
			Course:      normalizeCode(code),
			Category:    category,
			Subcategory: strings.ToLower(cell(row, cols["subcategory"])),
		})
	}
	return table, nil
}

// FindCourseCategory returns the first requirement category listing the
// course, or elective when none does.
func FindCourseCategory(reqs model.RequirementTable, code string) model.RequirementCategory {
	if rows := reqs.ForCourse(code); len(rows) > 0 {
		return rows[0].Category
	}
	return model.CategoryElective
}

func headerIndex(header, required []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// normalizeCode collapses whitespace and upper-cases a course code.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), " "))
}
