package scheduler

import (
	"github.com/Veraticus/course-planner/internal/csp"
	"github.com/Veraticus/course-planner/internal/model"
)

// coursePredicate decides whether a course code counts toward an auxiliary.
type coursePredicate interface {
	matches(code string) bool
}

// inRequirement matches courses listed under a (category, subcategory) row.
type inRequirement struct {
	lookup      model.Lookup
	category    model.RequirementCategory
	subcategory string
}

func (r inRequirement) matches(code string) bool {
	return r.lookup.Is(code, r.category, r.subcategory)
}

// inCategory matches courses with any row in the category.
type inCategory struct {
	lookup   model.Lookup
	category model.RequirementCategory
}

func (r inCategory) matches(code string) bool {
	return r.lookup.InCategory(code, r.category)
}

// inSet matches courses of a topic course set.
type inSet map[string]bool

func (s inSet) matches(code string) bool {
	return s[code]
}

// countCourses ties a quarter's auxiliary count to the number of chosen
// courses matching pred. With saturate > 0 the count is capped there. An
// empty selection forces 0.
type countCourses struct {
	pred     coursePredicate
	perMatch int
	saturate int
}

func (f countCourses) Weight(classes, count csp.Value) float64 {
	sel := classes.(model.Classes)
	n := 0
	for _, code := range sel.Courses() {
		if f.pred.matches(code) {
			n++
		}
	}
	if f.saturate > 0 {
		n = min(n, f.saturate)
	}
	return csp.Bool(count.(int) == n*f.perMatch)
}

// quarterUnits ties the quarter's units to the selection: 0 when empty,
// otherwise every chosen course at the fixed per-course load.
type quarterUnits struct {
	unitsPerCourse int
}

func (f quarterUnits) Weight(classes, units csp.Value) float64 {
	sel := classes.(model.Classes)
	return csp.Bool(units.(int) == len(sel.Courses())*f.unitsPerCourse)
}

// foundationAreas returns the foundation subcategories a selection covers,
// with the number of chosen courses covering each.
func foundationAreas(lookup model.Lookup, sel model.Classes) map[string]int {
	areas := make(map[string]int)
	for _, code := range sel.Courses() {
		for sub := range lookup.Subcategories(code, model.CategoryFoundation) {
			areas[sub]++
		}
	}
	return areas
}

// noSharedFoundation forbids a pair whose courses cover the same
// foundation area.
type noSharedFoundation struct {
	lookup model.Lookup
}

func (f noSharedFoundation) Weight(classes csp.Value) float64 {
	for _, n := range foundationAreas(f.lookup, classes.(model.Classes)) {
		if n > 1 {
			return 0
		}
	}
	return 1
}

// noRepeatCourse forbids taking the same course in two quarters.
type noRepeatCourse struct{}

func (noRepeatCourse) Weight(a, b csp.Value) float64 {
	first, second := a.(model.Classes), b.(model.Classes)
	for _, code := range first.Courses() {
		if second.Contains(code) {
			return 0
		}
	}
	return 1
}

// noRepeatFoundation forbids covering a foundation area in two quarters.
type noRepeatFoundation struct {
	lookup model.Lookup
}

func (f noRepeatFoundation) Weight(a, b csp.Value) float64 {
	first := foundationAreas(f.lookup, a.(model.Classes))
	if len(first) == 0 {
		return 1
	}
	for area := range foundationAreas(f.lookup, b.(model.Classes)) {
		if first[area] > 0 {
			return 0
		}
	}
	return 1
}

// rewardPreference weighs a selection by the rewards of its courses so
// higher-rated schedules win among feasible ones.
type rewardPreference struct {
	rewards map[string]float64
}

func (f rewardPreference) Weight(classes csp.Value) float64 {
	w := 1.0
	for _, code := range classes.(model.Classes).Courses() {
		w *= 1 + max(f.rewards[code], 0)
	}
	return w
}
