package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterIndex(t *testing.T) {
	tests := []struct {
		name    string
		term    Term
		year    int
		want    int
		wantErr bool
	}{
		{name: "first autumn", year: 0, term: TermAutumn, want: 1},
		{name: "first summer", year: 0, term: TermSummer, want: 4},
		{name: "second winter", year: 1, term: TermWinter, want: 6},
		{name: "third spring", year: 2, term: TermSpring, want: 11},
		{name: "unknown term", year: 0, term: Term("Fall"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuarterIndex(tt.year, tt.term)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			term, year := QuarterTerm(got)
			assert.Equal(t, tt.term, term)
			assert.Equal(t, tt.year, year)
		})
	}
}

func TestCourse(t *testing.T) {
	c := Course{Subject: "CS", Number: "221", UnitsMin: 3, UnitsMax: 4, Quarters: []int{1, 5}}

	assert.Equal(t, "CS 221", c.Code())
	assert.True(t, c.AllowsUnits(4))
	assert.False(t, c.AllowsUnits(5))
	assert.True(t, c.OfferedIn(5))
	assert.False(t, c.OfferedIn(2))
}

func TestClasses(t *testing.T) {
	assert.True(t, NoClasses.IsEmpty())
	assert.Nil(t, NoClasses.Courses())
	assert.Equal(t, "none", NoClasses.String())

	pair := TakeClasses("CS 229", "CS 221")
	assert.False(t, pair.IsEmpty())
	assert.Equal(t, []string{"CS 221", "CS 229"}, pair.Courses())
	assert.Equal(t, TakeClasses("CS 221", "CS 229"), pair)
	assert.True(t, pair.Contains("CS 229"))
	assert.False(t, pair.Contains("CS 110"))
}

func TestRequirementTable(t *testing.T) {
	table := RequirementTable{
		{Course: "EE 180", Category: CategoryBreadth, Subcategory: "systems"},
		{Course: "CS 110", Category: CategoryFoundation, Subcategory: "systems"},
		{Course: "CS 221", Category: CategoryDepth, Subcategory: DepthA},
		{Course: "CS 221", Category: CategorySignificantImplementation},
		{Course: "CS 221", Category: CategoryBreadth, Subcategory: "applications"},
	}

	assert.Len(t, table.ForCourse("CS 221"), 3)
	assert.Equal(t, []string{"systems", "applications"}, table.Subcategories(CategoryBreadth))
	assert.True(t, table.Has("CS 110", CategoryFoundation))
	assert.False(t, table.Has("EE 180", CategoryFoundation))

	lookup := NewLookup(table)
	assert.True(t, lookup.Is("CS 110", CategoryFoundation, "systems"))
	assert.False(t, lookup.Is("CS 110", CategoryBreadth, "systems"))
	assert.True(t, lookup.InCategory("CS 221", CategorySignificantImplementation))
	assert.Equal(t, map[string]bool{"applications": true}, lookup.Subcategories("CS 221", CategoryBreadth))
}

func TestParseRequirementCategory(t *testing.T) {
	c, err := ParseRequirementCategory(" Significant Implementation ")
	require.NoError(t, err)
	assert.Equal(t, CategorySignificantImplementation, c)

	_, err = ParseRequirementCategory("minor")
	assert.Error(t, err)
}

func TestPlan(t *testing.T) {
	p := &Plan{Courses: []PlannedCourse{
		{Quarter: 5, Course: "CS 229", Units: 4},
		{Quarter: 1, Course: "CS 221", Units: 4},
		{Quarter: 1, Course: "CS 103", Units: 3},
	}}
	p.SortCourses()

	assert.Equal(t, 11, p.TotalUnits())
	assert.Equal(t, []int{1, 5}, p.Quarters())
	assert.Equal(t, "CS 103", p.Courses[0].Course)
	assert.Len(t, p.ByQuarter()[1], 2)
}
