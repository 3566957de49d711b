// Package degree tracks progress toward a degree program as courses are
// taken or waived.
package degree

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/samber/lo"

	"github.com/Veraticus/course-planner/internal/model"
)

// Program-wide thresholds.
const (
	TotalUnitsRequired = 45
	DepthUnitsRequired = 21
	FoundationUnitCap  = 10
	SeminarUnitCap     = 3
)

// ErrNotFoundation is returned when waiving a course with no foundation row.
var ErrNotFoundation = errors.New("cannot waive a non-foundation course")

// DefaultDepthSlots is the number of courses still required per depth subcategory.
func DefaultDepthSlots() map[string]int {
	return map[string]int{model.DepthA: 1, model.DepthB: 4, model.DepthC: 0}
}

// Progress is the remaining-requirements state of one student. It is
// mutated by TakeCourse and WaiveCourse; search branches work on clones.
type Progress struct {
	FoundationsAreasLeft               map[string]bool
	BreadthAreasLeft                   map[string]bool
	DepthAreasLeft                     map[string]int
	CoursesTaken                       map[string]bool
	FoundationUnitsCounted             int
	DepthUnitsLeft                     int
	SeminarUnitsTaken                  int
	TotalRequirementUnitsTaken         int
	SignificantImplementationSatisfied bool
}

// NewProgress starts a student with every foundation and breadth area of
// the requirement table outstanding.
func NewProgress(reqs model.RequirementTable) *Progress {
	return &Progress{
		FoundationsAreasLeft: lo.SliceToMap(reqs.Subcategories(model.CategoryFoundation), func(s string) (string, bool) { return s, true }),
		BreadthAreasLeft:     lo.SliceToMap(reqs.Subcategories(model.CategoryBreadth), func(s string) (string, bool) { return s, true }),
		DepthAreasLeft:       DefaultDepthSlots(),
		DepthUnitsLeft:       DepthUnitsRequired,
		CoursesTaken:         make(map[string]bool),
	}
}

// Clone returns an independent copy.
func (p *Progress) Clone() *Progress {
	c := *p
	c.FoundationsAreasLeft = maps.Clone(p.FoundationsAreasLeft)
	c.BreadthAreasLeft = maps.Clone(p.BreadthAreasLeft)
	c.DepthAreasLeft = maps.Clone(p.DepthAreasLeft)
	c.CoursesTaken = maps.Clone(p.CoursesTaken)
	return &c
}

// FoundationsSatisfied reports whether no foundation area remains.
func (p *Progress) FoundationsSatisfied() bool {
	return len(p.FoundationsAreasLeft) == 0
}

// BreadthSatisfied reports whether the breadth requirement is met.
//
// NOTE: one breadth area is allowed to remain outstanding. This is the
// program rule, not an off-by-one; do not tighten it to zero.
func (p *Progress) BreadthSatisfied() bool {
	return len(p.BreadthAreasLeft) <= 1
}

// DepthSatisfied reports whether every depth slot and the depth unit
// minimum are covered.
func (p *Progress) DepthSatisfied() bool {
	for _, left := range p.DepthAreasLeft {
		if left > 0 {
			return false
		}
	}
	return p.DepthUnitsLeft <= 0
}

// UnitsSatisfied reports whether enough units count toward the degree.
func (p *Progress) UnitsSatisfied() bool {
	return p.TotalRequirementUnitsTaken >= TotalUnitsRequired
}

// IsProgramSatisfied reports whether every requirement category holds.
func (p *Progress) IsProgramSatisfied() bool {
	return p.FoundationsSatisfied() &&
		p.BreadthSatisfied() &&
		p.DepthSatisfied() &&
		p.SignificantImplementationSatisfied &&
		p.UnitsSatisfied()
}

// RequirementsSatisfiedByCourse returns the still-outstanding requirements
// the course would satisfy. When no row of the table helps, an elective
// course counts as an elective while the unit total is short. An empty
// result means taking the course does not help.
func (p *Progress) RequirementsSatisfiedByCourse(reqs model.RequirementTable, course model.Course) []model.Satisfaction {
	code := course.Code()
	var satisfied []model.Satisfaction
	for _, row := range reqs.ForCourse(code) {
		if p.stillNeeded(row) {
			satisfied = append(satisfied, model.Satisfaction{Category: row.Category, Subcategory: row.Subcategory})
		}
	}

	// A row that matched but is no longer needed does not fall back to
	// elective credit; only courses with no useful row at all do.
	if len(satisfied) == 0 && p.isElective(code) && !p.UnitsSatisfied() {
		satisfied = append(satisfied, model.ElectiveSatisfaction)
	}
	return satisfied
}

func (p *Progress) stillNeeded(row model.Requirement) bool {
	switch row.Category {
	case model.CategoryFoundation:
		return p.FoundationsAreasLeft[row.Subcategory]
	case model.CategoryBreadth:
		// Only while more than one breadth area is outstanding; see BreadthSatisfied.
		return len(p.BreadthAreasLeft) > 1 && p.BreadthAreasLeft[row.Subcategory]
	case model.CategoryDepth:
		return p.DepthUnitsLeft > 0 || p.DepthAreasLeft[row.Subcategory] > 0
	case model.CategorySignificantImplementation:
		return !p.SignificantImplementationSatisfied
	default:
		return false
	}
}

func (p *Progress) isElective(code string) bool {
	if IsElective(code) {
		return true
	}
	return IsSeminar(code) && p.SeminarUnitsTaken < SeminarUnitCap
}

// TakeCourse applies a course taken for the given units. Foundation units
// count toward the total only up to FoundationUnitCap and seminar units only
// up to SeminarUnitCap. The course is recorded as taken even when it
// satisfies nothing.
func (p *Progress) TakeCourse(reqs model.RequirementTable, course model.Course, units int) {
	if !p.ApplyCourse(reqs, course, units) {
		slog.Warn("Course does not satisfy any remaining requirement", "course", course.Code(), "units", units)
	}
}

// ApplyCourse is TakeCourse without logging. It reports whether the course
// satisfied any remaining requirement.
func (p *Progress) ApplyCourse(reqs model.RequirementTable, course model.Course, units int) bool {
	code := course.Code()
	satisfied := p.RequirementsSatisfiedByCourse(reqs, course)
	p.CoursesTaken[code] = true
	if len(satisfied) == 0 {
		return false
	}

	foundation, depth := false, false
	for _, s := range satisfied {
		switch s.Category {
		case model.CategoryFoundation:
			delete(p.FoundationsAreasLeft, s.Subcategory)
			foundation = true
		case model.CategoryBreadth:
			delete(p.BreadthAreasLeft, s.Subcategory)
		case model.CategoryDepth:
			p.DepthAreasLeft[s.Subcategory]--
			depth = true
		case model.CategorySignificantImplementation:
			p.SignificantImplementationSatisfied = true
		}
	}
	if depth {
		p.DepthUnitsLeft -= units
	}

	counted := units
	if foundation {
		counted = min(counted, FoundationUnitCap-p.FoundationUnitsCounted)
		p.FoundationUnitsCounted += counted
	}
	if IsSeminar(code) {
		counted = min(counted, SeminarUnitCap-p.SeminarUnitsTaken)
		p.SeminarUnitsTaken += counted
	}
	p.TotalRequirementUnitsTaken += max(counted, 0)
	return true
}

// WaiveCourse marks the foundation areas of a course as satisfied without
// counting any units. Only foundation courses can be waived.
func (p *Progress) WaiveCourse(reqs model.RequirementTable, course model.Course) error {
	code := course.Code()
	rows := lo.Filter(reqs.ForCourse(code), func(r model.Requirement, _ int) bool {
		return r.Category == model.CategoryFoundation
	})
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFoundation, code)
	}
	for _, r := range rows {
		delete(p.FoundationsAreasLeft, r.Subcategory)
	}
	return nil
}

// FoundationsLeft returns the outstanding foundation areas, sorted.
func (p *Progress) FoundationsLeft() []string {
	return slices.Sorted(maps.Keys(p.FoundationsAreasLeft))
}

// BreadthLeft returns the outstanding breadth areas, sorted.
func (p *Progress) BreadthLeft() []string {
	return slices.Sorted(maps.Keys(p.BreadthAreasLeft))
}
