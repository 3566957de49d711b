package model

import (
	"slices"
	"sort"
)

// ClassDatabase maps a quarter index to the courses offered that quarter.
type ClassDatabase map[int][]Course

// NewClassDatabase indexes courses by every quarter they are offered in.
// Each quarter's courses are sorted by code.
func NewClassDatabase(courses []Course) ClassDatabase {
	db := make(ClassDatabase)
	for _, c := range courses {
		for _, q := range c.Quarters {
			db[q] = append(db[q], c)
		}
	}
	for q := range db {
		sort.SliceStable(db[q], func(i, j int) bool { return db[q][i].Code() < db[q][j].Code() })
	}
	return db
}

// Quarters returns the quarter indices with offerings, ascending.
func (db ClassDatabase) Quarters() []int {
	quarters := make([]int, 0, len(db))
	for q := range db {
		quarters = append(quarters, q)
	}
	sort.Ints(quarters)
	return quarters
}

// Without returns a copy of the database minus the given quarters.
func (db ClassDatabase) Without(quarters ...int) ClassDatabase {
	out := make(ClassDatabase, len(db))
	for q, courses := range db {
		if slices.Contains(quarters, q) {
			continue
		}
		out[q] = courses
	}
	return out
}

// Limit keeps only quarters up to and including maxQuarter.
func (db ClassDatabase) Limit(maxQuarter int) ClassDatabase {
	out := make(ClassDatabase, len(db))
	for q, courses := range db {
		if q <= maxQuarter {
			out[q] = courses
		}
	}
	return out
}

// Course finds an offered course by code.
func (db ClassDatabase) Course(code string) (Course, bool) {
	for _, q := range db.Quarters() {
		for _, c := range db[q] {
			if c.Code() == code {
				return c, true
			}
		}
	}
	return Course{}, false
}
