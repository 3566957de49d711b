package model

import (
	"sort"
	"time"
)

// PlannedCourse is one course placed in a quarter of a schedule.
type PlannedCourse struct {
	Course  string `db:"course"`
	Quarter int    `db:"quarter"`
	Units   int    `db:"units"`
}

// Plan is a generated schedule.
type Plan struct {
	CreatedAt time.Time       `db:"created_at"`
	ID        string          `db:"id"`
	Name      string          `db:"name"`
	Engine    string          `db:"engine"`
	Profile   string          `db:"profile"`
	Courses   []PlannedCourse `db:"-"`
	Weight    float64         `db:"weight"`
}

// TotalUnits sums the units of every planned course.
func (p *Plan) TotalUnits() int {
	total := 0
	for _, c := range p.Courses {
		total += c.Units
	}
	return total
}

// ByQuarter groups the planned courses by quarter index.
func (p *Plan) ByQuarter() map[int][]PlannedCourse {
	groups := make(map[int][]PlannedCourse)
	for _, c := range p.Courses {
		groups[c.Quarter] = append(groups[c.Quarter], c)
	}
	return groups
}

// Quarters returns the quarters with at least one course, ascending.
func (p *Plan) Quarters() []int {
	seen := make(map[int]bool)
	var quarters []int
	for _, c := range p.Courses {
		if !seen[c.Quarter] {
			seen[c.Quarter] = true
			quarters = append(quarters, c.Quarter)
		}
	}
	sort.Ints(quarters)
	return quarters
}

// SortCourses orders the courses by quarter, then code.
func (p *Plan) SortCourses() {
	sort.SliceStable(p.Courses, func(i, j int) bool {
		if p.Courses[i].Quarter != p.Courses[j].Quarter {
			return p.Courses[i].Quarter < p.Courses[j].Quarter
		}
		return p.Courses[i].Course < p.Courses[j].Course
	})
}
