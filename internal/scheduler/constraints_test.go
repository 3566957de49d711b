package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/course-planner/internal/catalog"
	"github.com/Veraticus/course-planner/internal/model"
)

func TestCountCourses(t *testing.T) {
	lookup := model.NewLookup(catalog.DefaultRequirements())
	depthB := countCourses{pred: inRequirement{lookup: lookup, category: model.CategoryDepth, subcategory: model.DepthB}, perMatch: 1}
	depthA := countCourses{pred: inRequirement{lookup: lookup, category: model.CategoryDepth, subcategory: model.DepthA}, perMatch: 1, saturate: 1}
	depthUnits := countCourses{pred: inCategory{lookup: lookup, category: model.CategoryDepth}, perMatch: 4}

	tests := []struct {
		name    string
		factor  countCourses
		classes model.Classes
		count   int
		want    float64
	}{
		{name: "empty forces zero", factor: depthB, classes: model.NoClasses, count: 0, want: 1},
		{name: "empty rejects nonzero", factor: depthB, classes: model.NoClasses, count: 1, want: 0},
		{name: "exact count", factor: depthB, classes: model.TakeClasses("CS 229", "CS 224N"), count: 2, want: 1},
		{name: "wrong count", factor: depthB, classes: model.TakeClasses("CS 229", "CS 224N"), count: 1, want: 0},
		{name: "saturated", factor: depthA, classes: model.TakeClasses("CS 221", "CS 229"), count: 1, want: 1},
		{name: "depth units", factor: depthUnits, classes: model.TakeClasses("CS 221", "CS 103"), count: 4, want: 1},
		{name: "unknown course", factor: depthUnits, classes: model.TakeClasses("CS 999", "CS 103"), count: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.factor.Weight(tt.classes, tt.count))
		})
	}
}

func TestQuarterUnits(t *testing.T) {
	f := quarterUnits{unitsPerCourse: 4}
	assert.Equal(t, 1.0, f.Weight(model.NoClasses, 0))
	assert.Equal(t, 0.0, f.Weight(model.NoClasses, 8))
	assert.Equal(t, 1.0, f.Weight(model.TakeClasses("CS 221", "CS 229"), 8))
	assert.Equal(t, 0.0, f.Weight(model.TakeClasses("CS 221", "CS 229"), 0))
}

func TestFoundationConstraints(t *testing.T) {
	lookup := model.NewLookup(catalog.DefaultRequirements())

	within := noSharedFoundation{lookup: lookup}
	assert.Equal(t, 0.0, within.Weight(model.TakeClasses("CS 109", "CME 106")))
	assert.Equal(t, 1.0, within.Weight(model.TakeClasses("CS 109", "CS 103")))
	assert.Equal(t, 1.0, within.Weight(model.NoClasses))
	// Breadth systems and foundation systems are different areas.
	assert.Equal(t, 1.0, within.Weight(model.TakeClasses("CS 110", "EE 180")))

	across := noRepeatFoundation{lookup: lookup}
	assert.Equal(t, 0.0, across.Weight(model.TakeClasses("CS 109", "CS 221"), model.TakeClasses("CME 106", "CS 229")))
	assert.Equal(t, 1.0, across.Weight(model.TakeClasses("CS 109", "CS 221"), model.TakeClasses("CS 103", "CS 229")))
	assert.Equal(t, 1.0, across.Weight(model.NoClasses, model.TakeClasses("CS 103", "CS 229")))
}

func TestNoRepeatCourse(t *testing.T) {
	f := noRepeatCourse{}
	assert.Equal(t, 0.0, f.Weight(model.TakeClasses("CS 221", "CS 229"), model.TakeClasses("CS 229", "CS 103")))
	assert.Equal(t, 1.0, f.Weight(model.TakeClasses("CS 221", "CS 229"), model.TakeClasses("CS 224N", "CS 103")))
	assert.Equal(t, 1.0, f.Weight(model.NoClasses, model.NoClasses))
}

func TestRewardPreference(t *testing.T) {
	f := rewardPreference{rewards: map[string]float64{"CS 221": 1, "CS 229": 0.5, "CS 103": -3}}
	assert.InDelta(t, 3.0, f.Weight(model.TakeClasses("CS 221", "CS 229")), 1e-9)
	assert.InDelta(t, 2.0, f.Weight(model.TakeClasses("CS 221", "CS 103")), 1e-9)
	assert.Equal(t, 1.0, f.Weight(model.NoClasses))
}
