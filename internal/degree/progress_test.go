package degree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/course-planner/internal/catalog"
	"github.com/Veraticus/course-planner/internal/model"
)

func course(code string) model.Course {
	subject, number, _ := strings.Cut(code, " ")
	return model.Course{Subject: subject, Number: number, UnitsMin: 1, UnitsMax: 5}
}

func courses(codes ...string) []model.Course {
	out := make([]model.Course, len(codes))
	for i, code := range codes {
		out[i] = course(code)
	}
	return out
}

var (
	allFoundations = []string{"CS 109", "CS 103", "CS 161", "CS 107", "CS 110"}
	depthCourses   = []string{"CS 238", "CS 237B", "CS 224V", "CS 224S", "CS 221", "ENGR 205"}
	breadthCourses = []string{"COMM 166", "PHIL 251", "EE 180"}
)

func assertUntouchedExceptFoundations(t *testing.T, p *Progress) {
	t.Helper()
	assert.Zero(t, p.SeminarUnitsTaken)
	assert.Len(t, p.BreadthAreasLeft, 4)
	assert.Equal(t, DepthUnitsRequired, p.DepthUnitsLeft)
	assert.False(t, p.SignificantImplementationSatisfied)
}

func TestWaiveCourse(t *testing.T) {
	tests := []struct {
		name           string
		waive          []string
		wantLeft       []string
		wantFoundation bool
	}{
		{
			name:           "all foundations",
			waive:          allFoundations,
			wantLeft:       []string{},
			wantFoundation: true,
		},
		{
			name:     "two probability courses",
			waive:    []string{"CS 109", "CME 106"},
			wantLeft: []string{"algorithm", "logic", "organ", "systems"},
		},
		{
			name:     "logic and systems",
			waive:    []string{"CS 103", "CS 110"},
			wantLeft: []string{"algorithm", "organ", "probability"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs := catalog.DefaultRequirements()
			p := NewProgress(reqs)
			for _, c := range courses(tt.waive...) {
				require.NoError(t, p.WaiveCourse(reqs, c))
			}

			assert.Zero(t, p.TotalRequirementUnitsTaken)
			assert.ElementsMatch(t, tt.wantLeft, p.FoundationsLeft())
			assert.Equal(t, tt.wantFoundation, p.FoundationsSatisfied())
			assert.False(t, p.IsProgramSatisfied())
			assertUntouchedExceptFoundations(t, p)
		})
	}
}

func TestWaiveNonFoundationCourse(t *testing.T) {
	for _, code := range []string{"CS 229", "CS 271", "COMM 166"} {
		t.Run(code, func(t *testing.T) {
			reqs := catalog.DefaultRequirements()
			p := NewProgress(reqs)
			before := p.Clone()

			err := p.WaiveCourse(reqs, course(code))
			require.ErrorIs(t, err, ErrNotFoundation)
			assert.Equal(t, before, p)
		})
	}
}

func TestTakeSingleFoundationCourse(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	p.TakeCourse(reqs, course("CS 103"), 5)

	assert.Equal(t, 5, p.TotalRequirementUnitsTaken)
	assert.Equal(t, 5, p.FoundationUnitsCounted)
	assert.Equal(t, []string{"algorithm", "organ", "probability", "systems"}, p.FoundationsLeft())
	assert.False(t, p.FoundationsSatisfied())
	assert.False(t, p.IsProgramSatisfied())
	assertUntouchedExceptFoundations(t, p)
}

func TestSatisfyFoundation(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	for _, c := range courses(allFoundations...) {
		p.TakeCourse(reqs, c, 3)
	}

	assert.Equal(t, FoundationUnitCap, p.TotalRequirementUnitsTaken)
	assert.Equal(t, FoundationUnitCap, p.FoundationUnitsCounted)
	assert.True(t, p.FoundationsSatisfied())
	assert.False(t, p.IsProgramSatisfied())
	assertUntouchedExceptFoundations(t, p)
}

func TestTakeSignificantImplementationCourse(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	p.TakeCourse(reqs, course("CS 151"), 4)

	assert.True(t, p.SignificantImplementationSatisfied)
	assert.Equal(t, 4, p.TotalRequirementUnitsTaken)
	assert.Len(t, p.FoundationsAreasLeft, 5)
	assert.Zero(t, p.FoundationUnitsCounted)
	assert.Equal(t, DepthUnitsRequired, p.DepthUnitsLeft)
	assert.Len(t, p.BreadthAreasLeft, 4)
	assert.Zero(t, p.SeminarUnitsTaken)
	assert.False(t, p.IsProgramSatisfied())
}

func TestTakeBreadthCourse(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	p.TakeCourse(reqs, course("COMM 166"), 3)

	assert.Equal(t, 3, p.TotalRequirementUnitsTaken)
	assert.Equal(t, []string{"applications", "systems", "theory"}, p.BreadthLeft())
	assert.False(t, p.BreadthSatisfied())
}

func TestSatisfyBreadth(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	for _, c := range courses(breadthCourses...) {
		p.TakeCourse(reqs, c, 4)
	}

	assert.Equal(t, 12, p.TotalRequirementUnitsTaken)
	assert.Equal(t, []string{"applications"}, p.BreadthLeft())
	assert.True(t, p.BreadthSatisfied())
	assert.False(t, p.IsProgramSatisfied())
	assert.Len(t, p.FoundationsAreasLeft, 5)
	assert.Equal(t, DepthUnitsRequired, p.DepthUnitsLeft)
}

func TestTakeDepthCourse(t *testing.T) {
	tests := []struct {
		code  string
		wantB int
	}{
		{code: "ENGR 205", wantB: 4},
		{code: "CS 238", wantB: 3},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			reqs := catalog.DefaultRequirements()
			p := NewProgress(reqs)
			p.TakeCourse(reqs, course(tt.code), 4)

			assert.Equal(t, 4, p.TotalRequirementUnitsTaken)
			assert.Equal(t, 17, p.DepthUnitsLeft)
			assert.Equal(t, 1, p.DepthAreasLeft[model.DepthA])
			assert.Equal(t, tt.wantB, p.DepthAreasLeft[model.DepthB])
			assert.False(t, p.DepthSatisfied())
			assert.False(t, p.SignificantImplementationSatisfied)
			assert.Len(t, p.BreadthAreasLeft, 4)
		})
	}
}

func TestSatisfyDepth(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	for _, c := range courses(depthCourses...) {
		p.TakeCourse(reqs, c, 4)
	}

	assert.Equal(t, 24, p.TotalRequirementUnitsTaken)
	assert.True(t, p.DepthSatisfied())
	assert.LessOrEqual(t, p.DepthUnitsLeft, 0)
	assert.Len(t, p.BreadthAreasLeft, 3)
	assert.True(t, p.SignificantImplementationSatisfied)
	assert.False(t, p.IsProgramSatisfied())
}

func TestSatisfyDegreeNoWaivers(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	all := append(append(append([]string{}, allFoundations...), depthCourses...), breadthCourses...)
	for _, c := range courses(all...) {
		p.TakeCourse(reqs, c, 4)
	}

	assert.Equal(t, 46, p.TotalRequirementUnitsTaken)
	assert.Equal(t, FoundationUnitCap, p.FoundationUnitsCounted)
	assert.True(t, p.IsProgramSatisfied())
	assert.Zero(t, p.SeminarUnitsTaken)
	assert.Len(t, p.BreadthAreasLeft, 1)
	assert.Len(t, p.CoursesTaken, len(all))
}

func TestSatisfyDegreeThreeWaivers(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	for _, c := range courses("CS 109", "CS 103", "CS 161") {
		require.NoError(t, p.WaiveCourse(reqs, c))
	}
	taken := append(append([]string{"CS 107", "CS 110"}, depthCourses...), breadthCourses...)
	for _, c := range courses(taken...) {
		p.TakeCourse(reqs, c, 4)
	}
	p.TakeCourse(reqs, course("CS 300"), 1)

	assert.Equal(t, 45, p.TotalRequirementUnitsTaken)
	assert.Equal(t, 8, p.FoundationUnitsCounted)
	assert.Equal(t, 1, p.SeminarUnitsTaken)
	assert.True(t, p.IsProgramSatisfied())
}

func TestRequirementsSatisfiedByCourse(t *testing.T) {
	reqs := catalog.DefaultRequirements()

	t.Run("multiple rows", func(t *testing.T) {
		p := NewProgress(reqs)
		got := p.RequirementsSatisfiedByCourse(reqs, course("CS 221"))
		assert.ElementsMatch(t, []model.Satisfaction{
			{Category: model.CategoryBreadth, Subcategory: "applications"},
			{Category: model.CategoryDepth, Subcategory: model.DepthA},
			{Category: model.CategorySignificantImplementation},
		}, got)
	})

	t.Run("elective fallback", func(t *testing.T) {
		p := NewProgress(reqs)
		got := p.RequirementsSatisfiedByCourse(reqs, course("MATH 104"))
		assert.Equal(t, []model.Satisfaction{model.ElectiveSatisfaction}, got)
	})

	t.Run("no elective once units are met", func(t *testing.T) {
		p := NewProgress(reqs)
		p.TotalRequirementUnitsTaken = TotalUnitsRequired
		assert.Empty(t, p.RequirementsSatisfiedByCourse(reqs, course("MATH 104")))
	})

	t.Run("satisfied foundation gives nothing", func(t *testing.T) {
		p := NewProgress(reqs)
		require.NoError(t, p.WaiveCourse(reqs, course("CS 103")))
		assert.Empty(t, p.RequirementsSatisfiedByCourse(reqs, course("CS 103")))
	})

	t.Run("lower division course", func(t *testing.T) {
		p := NewProgress(reqs)
		assert.Empty(t, p.RequirementsSatisfiedByCourse(reqs, course("CS 106B")))
	})
}

func TestTakeCourseSatisfyingNothing(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	p.TakeCourse(reqs, course("CS 106B"), 5)

	assert.Zero(t, p.TotalRequirementUnitsTaken)
	assert.True(t, p.CoursesTaken["CS 106B"])
}

func TestSeminarUnitsAreCapped(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	p.TakeCourse(reqs, course("CS 547"), 2)
	p.TakeCourse(reqs, course("EE 380"), 2)
	p.TakeCourse(reqs, course("CS 300"), 1)

	assert.Equal(t, SeminarUnitCap, p.SeminarUnitsTaken)
	assert.Equal(t, SeminarUnitCap, p.TotalRequirementUnitsTaken)
}

func TestProgressMonotonicity(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	sequence := []string{"CS 103", "CS 221", "CS 103", "COMM 166", "CS 547", "CS 229", "EE 180", "PHIL 251", "CS 110", "CS 161", "CS 107"}

	presented := 0
	for _, c := range courses(sequence...) {
		before := p.Clone()
		p.TakeCourse(reqs, c, 5)
		presented += 5

		assert.LessOrEqual(t, len(p.FoundationsAreasLeft), len(before.FoundationsAreasLeft))
		assert.LessOrEqual(t, len(p.BreadthAreasLeft), len(before.BreadthAreasLeft))
		assert.LessOrEqual(t, p.DepthUnitsLeft, before.DepthUnitsLeft)
		assert.GreaterOrEqual(t, p.TotalRequirementUnitsTaken, before.TotalRequirementUnitsTaken)
		assert.LessOrEqual(t, p.TotalRequirementUnitsTaken, presented)
		assert.LessOrEqual(t, p.FoundationUnitsCounted, FoundationUnitCap)
		assert.LessOrEqual(t, p.SeminarUnitsTaken, SeminarUnitCap)
	}
}

func TestIsProgramSatisfiedIsIdempotent(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	for _, c := range courses(depthCourses...) {
		p.TakeCourse(reqs, c, 4)
	}
	first := p.IsProgramSatisfied()
	for range 3 {
		assert.Equal(t, first, p.IsProgramSatisfied())
	}
}

func TestClone(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)
	c := p.Clone()
	c.TakeCourse(reqs, course("CS 221"), 4)
	require.NoError(t, c.WaiveCourse(reqs, course("CS 103")))

	assert.Len(t, p.FoundationsAreasLeft, 5)
	assert.Len(t, p.BreadthAreasLeft, 4)
	assert.Equal(t, 1, p.DepthAreasLeft[model.DepthA])
	assert.Empty(t, p.CoursesTaken)
	assert.False(t, p.SignificantImplementationSatisfied)
}

func TestApplyCourseReportsRedundantCourse(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := NewProgress(reqs)

	assert.True(t, p.ApplyCourse(reqs, course("CS 109"), 4))
	before := p.TotalRequirementUnitsTaken

	assert.False(t, p.ApplyCourse(reqs, course("CME 106"), 4))
	assert.True(t, p.CoursesTaken["CME 106"])
	assert.Equal(t, before, p.TotalRequirementUnitsTaken)
}
