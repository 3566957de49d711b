package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/course-planner/internal/common"
	"github.com/Veraticus/course-planner/internal/model"
)

var courseColumns = []string{"units_min", "units_max", "course_number", "course_name", "course_subject", "quarters"}

// Source names the course files to load: one <year>_<department>.csv per
// academic year and department under Dir.
type Source struct {
	Requirements model.RequirementTable
	Dir          string
	Years        []string
	Departments  []string
}

// FilePath returns the course file for a year and department.
func (s Source) FilePath(year, department string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s_%s.csv", year, department))
}

type courseRow struct {
	course model.Course
	terms  []model.Term
}

// LoadCourses reads every course file of the source concurrently and merges
// offerings of the same course across years. Years are sorted first so
// quarter indices follow the calendar.
func LoadCourses(ctx context.Context, src Source) ([]model.Course, error) {
	years := slices.Clone(src.Years)
	slices.Sort(years)

	type file struct {
		dept string
		path string
		rows []courseRow
		year int
	}
	files := make([]*file, 0, len(years)*len(src.Departments))
	for i, year := range years {
		for _, dept := range src.Departments {
			files = append(files, &file{year: i, dept: dept, path: src.FilePath(year, dept)})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := readCourseFile(f.path)
			if err != nil {
				return err
			}
			f.rows = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byCode := make(map[string]*model.Course)
	var order []string
	for _, f := range files {
		for _, row := range f.rows {
			quarters := make([]int, 0, len(row.terms))
			for _, term := range row.terms {
				q, err := model.QuarterIndex(f.year, term)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", f.path, err)
				}
				quarters = append(quarters, q)
			}

			code := row.course.Code()
			if existing, ok := byCode[code]; ok {
				existing.Quarters = lo.Uniq(append(existing.Quarters, quarters...))
				continue
			}
			c := row.course
			c.Quarters = lo.Uniq(quarters)
			c.Category = string(FindCourseCategory(src.Requirements, code))
			byCode[code] = &c
			order = append(order, code)
		}
		common.LogDebug("Loaded course file", common.Fields{"path": f.path, "courses": len(f.rows)})
	}

	courses := make([]model.Course, 0, len(order))
	for _, code := range order {
		c := byCode[code]
		slices.Sort(c.Quarters)
		courses = append(courses, *c)
	}
	return courses, nil
}

// LoadClassDatabase loads the source and indexes it by quarter.
func LoadClassDatabase(ctx context.Context, src Source) (model.ClassDatabase, error) {
	courses, err := LoadCourses(ctx, src)
	if err != nil {
		return nil, err
	}
	return model.NewClassDatabase(courses), nil
}

func readCourseFile(path string) ([]courseRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open course file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w: empty file", path, ErrMissingColumn)
	}
	cols, err := headerIndex(records[0], courseColumns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	optional := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok {
			return ""
		}
		return cell(row, i)
	}

	rows := make([]courseRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		terms := parseTerms(cell(rec, cols["quarters"]))
		if len(terms) == 0 {
			continue
		}
		unitsMin, err := strconv.Atoi(cell(rec, cols["units_min"]))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid units_min: %w", path, line, err)
		}
		unitsMax, err := strconv.Atoi(cell(rec, cols["units_max"]))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid units_max: %w", path, line, err)
		}
		var reward float64
		if s := optional(rec, "reward"); s != "" {
			if reward, err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("%s line %d: invalid reward: %w", path, line, err)
			}
		}
		rows = append(rows, courseRow{
			course: model.Course{
				Subject:     strings.ToUpper(cell(rec, cols["course_subject"])),
				Number:      strings.ToUpper(cell(rec, cols["course_number"])),
				Name:        cell(rec, cols["course_name"]),
				Instructor:  optional(rec, "instructor"),
				Description: optional(rec, "description"),
				UnitsMin:    unitsMin,
				UnitsMax:    unitsMax,
				Reward:      reward,
			},
			terms: terms,
		})
	}
	return rows, nil
}

// parseTerms accepts "Autumn;Spring", "Autumn, Spring" or "['Autumn', 'Spring']".
func parseTerms(s string) []model.Term {
	s = strings.Trim(s, "[]")
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	var terms []model.Term
	for _, f := range fields {
		f = strings.Trim(strings.TrimSpace(f), `'"`)
		if f == "" {
			continue
		}
		terms = append(terms, model.Term(strings.ToUpper(f[:1])+strings.ToLower(f[1:])))
	}
	return lo.Uniq(terms)
}
