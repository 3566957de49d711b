package model

import (
	"fmt"
	"slices"
)

// Term is a season within an academic year.
type Term string

const (
	// TermAutumn is the first quarter of an academic year.
	TermAutumn Term = "Autumn"
	// TermWinter is the second quarter of an academic year.
	TermWinter Term = "Winter"
	// TermSpring is the third quarter of an academic year.
	TermSpring Term = "Spring"
	// TermSummer is the fourth quarter of an academic year.
	TermSummer Term = "Summer"
)

// QuartersPerYear is the number of quarter indices consumed by one academic year.
const QuartersPerYear = 4

var termOffsets = map[Term]int{
	TermAutumn: 1,
	TermWinter: 2,
	TermSpring: 3,
	TermSummer: 4,
}

// QuarterIndex returns the 1-based quarter index of a term in the given
// zero-based academic year. Year 0 spans quarters 1-4, year 1 spans 5-8.
func QuarterIndex(yearIndex int, term Term) (int, error) {
	offset, ok := termOffsets[term]
	if !ok {
		return 0, fmt.Errorf("unknown term %q", term)
	}
	return QuartersPerYear*yearIndex + offset, nil
}

// QuarterTerm returns the term and zero-based year of a quarter index.
func QuarterTerm(quarter int) (Term, int) {
	year := (quarter - 1) / QuartersPerYear
	switch (quarter-1)%QuartersPerYear + 1 {
	case 1:
		return TermAutumn, year
	case 2:
		return TermWinter, year
	case 3:
		return TermSpring, year
	default:
		return TermSummer, year
	}
}

// Course is an offered course. Courses are immutable once loaded; two
// courses are the same course when their codes match.
type Course struct {
	Subject     string  `db:"subject"`
	Number      string  `db:"number"`
	Name        string  `db:"name"`
	Category    string  `db:"category"`
	Description string  `db:"description"`
	Instructor  string  `db:"instructor"`
	Quarters    []int   `db:"-"`
	UnitsMin    int     `db:"units_min"`
	UnitsMax    int     `db:"units_max"`
	Reward      float64 `db:"reward"`
}

// Code renders the course identity, e.g. "CS 221".
func (c Course) Code() string {
	return c.Subject + " " + c.Number
}

func (c Course) String() string {
	return c.Code()
}

// AllowsUnits reports whether the course may be taken for exactly n units.
func (c Course) AllowsUnits(n int) bool {
	return c.UnitsMin <= n && n <= c.UnitsMax
}

// OfferedIn reports whether the course is offered in the given quarter.
func (c Course) OfferedIn(quarter int) bool {
	return slices.Contains(c.Quarters, quarter)
}
