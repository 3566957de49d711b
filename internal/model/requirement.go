package model

import (
	"fmt"
	"strings"
)

// RequirementCategory is a degree requirement category.
type RequirementCategory string

const (
	// CategoryFoundation covers the core foundation courses.
	CategoryFoundation RequirementCategory = "foundation"
	// CategoryBreadth covers breadth areas outside the specialization.
	CategoryBreadth RequirementCategory = "breadth"
	// CategoryDepth covers the specialization, subcategories a, b and c.
	CategoryDepth RequirementCategory = "depth"
	// CategorySignificantImplementation is satisfied by one implementation-heavy course.
	CategorySignificantImplementation RequirementCategory = "significant implementation"
	// CategoryElective is the fallback for courses that only count toward units.
	CategoryElective RequirementCategory = "elective"
)

// Depth subcategories.
const (
	DepthA = "a"
	DepthB = "b"
	DepthC = "c"
)

// ParseRequirementCategory normalizes a category label.
func ParseRequirementCategory(s string) (RequirementCategory, error) {
	c := RequirementCategory(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryFoundation, CategoryBreadth, CategoryDepth,
		CategorySignificantImplementation, CategoryElective:
		return c, nil
	default:
		return "", fmt.Errorf("unknown requirement category %q", s)
	}
}

// Requirement is one row of a requirement table: a course code that
// satisfies a (category, subcategory) pair.
type Requirement struct {
	Course      string              `db:"course"`
	Category    RequirementCategory `db:"category"`
	Subcategory string              `db:"subcategory"`
}

// Satisfaction is a (category, subcategory) pair a course satisfies.
type Satisfaction struct {
	Category    RequirementCategory
	Subcategory string
}

// ElectiveSatisfaction is returned when a course only counts as an elective.
var ElectiveSatisfaction = Satisfaction{Category: CategoryElective}

// RequirementTable is an ordered set of requirement rows.
type RequirementTable []Requirement

// ForCourse returns every row naming the course code, in table order.
func (t RequirementTable) ForCourse(code string) []Requirement {
	var rows []Requirement
	for _, r := range t {
		if r.Course == code {
			rows = append(rows, r)
		}
	}
	return rows
}

// Subcategories returns the distinct subcategories of a category in table order.
func (t RequirementTable) Subcategories(category RequirementCategory) []string {
	seen := make(map[string]bool)
	var subs []string
	for _, r := range t {
		if r.Category != category || seen[r.Subcategory] {
			continue
		}
		seen[r.Subcategory] = true
		subs = append(subs, r.Subcategory)
	}
	return subs
}

// Has reports whether the course code has a row in the category.
func (t RequirementTable) Has(code string, category RequirementCategory) bool {
	for _, r := range t {
		if r.Course == code && r.Category == category {
			return true
		}
	}
	return false
}

// Lookup indexes a requirement table by course code for constant-time
// membership checks.
type Lookup map[string]map[Satisfaction]bool

// NewLookup builds a lookup from the table.
func NewLookup(t RequirementTable) Lookup {
	l := make(Lookup)
	for _, r := range t {
		if l[r.Course] == nil {
			l[r.Course] = make(map[Satisfaction]bool)
		}
		l[r.Course][Satisfaction{Category: r.Category, Subcategory: r.Subcategory}] = true
	}
	return l
}

// Is reports whether the course satisfies the (category, subcategory) pair.
func (l Lookup) Is(code string, category RequirementCategory, subcategory string) bool {
	return l[code][Satisfaction{Category: category, Subcategory: subcategory}]
}

// InCategory reports whether the course has any row in the category.
func (l Lookup) InCategory(code string, category RequirementCategory) bool {
	for s := range l[code] {
		if s.Category == category {
			return true
		}
	}
	return false
}

// Subcategories returns the course's subcategories within a category.
func (l Lookup) Subcategories(code string, category RequirementCategory) map[string]bool {
	subs := make(map[string]bool)
	for s := range l[code] {
		if s.Category == category {
			subs[s.Subcategory] = true
		}
	}
	return subs
}
