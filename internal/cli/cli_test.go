package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/course-planner/internal/catalog"
	"github.com/Veraticus/course-planner/internal/degree"
	"github.com/Veraticus/course-planner/internal/model"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestQuarterLabel(t *testing.T) {
	tests := map[int]string{
		1: "Autumn, year 1",
		2: "Winter, year 1",
		4: "Summer, year 1",
		5: "Autumn, year 2",
		8: "Summer, year 2",
	}
	for q, want := range tests {
		assert.Equal(t, want, QuarterLabel(q))
	}
}

func TestRenderSchedule(t *testing.T) {
	db := model.NewClassDatabase([]model.Course{
		{Subject: "CS", Number: "221", Name: "Artificial Intelligence", Quarters: []int{1}, UnitsMin: 3, UnitsMax: 4},
	})
	plan := &model.Plan{
		Engine: "csp",
		Courses: []model.PlannedCourse{
			{Quarter: 1, Course: "CS 221", Units: 4},
			{Quarter: 1, Course: "CS 229", Units: 4},
			{Quarter: 6, Course: "CS 238", Units: 4},
		},
	}

	out := RenderSchedule(plan, db)
	assert.Contains(t, out, "Autumn, year 1")
	assert.Contains(t, out, "Winter, year 2")
	assert.Contains(t, out, "Artificial Intelligence")
	assert.Contains(t, out, "CS 238")
	assert.Contains(t, out, "12 units over 2 quarters (csp)")
	assert.Equal(t, 1, strings.Count(out, "Autumn, year 1"))
}

func TestRenderScheduleEmpty(t *testing.T) {
	out := RenderSchedule(&model.Plan{Engine: "csp"}, nil)
	assert.Contains(t, out, "0 units every quarter")
}

func TestRenderProgress(t *testing.T) {
	reqs := catalog.DefaultRequirements()
	p := degree.NewProgress(reqs)
	for _, code := range []string{"CS 103", "CS 107", "CS 109", "CS 110", "CS 161"} {
		subject, number, _ := strings.Cut(code, " ")
		require.NoError(t, p.WaiveCourse(reqs, model.Course{Subject: subject, Number: number}))
	}

	out := RenderProgress(p)
	assert.Contains(t, out, "Foundations")
	assert.Contains(t, out, "0 of 45")
	assert.Contains(t, out, "Program not yet satisfied")
	assert.Contains(t, out, "applications")
}

func TestRenderRequirementsAndPlans(t *testing.T) {
	out := RenderRequirements(model.RequirementTable{
		{Course: "CS 221", Category: model.CategoryDepth, Subcategory: model.DepthA},
	})
	assert.Contains(t, out, "CS 221")
	assert.Contains(t, out, "depth")

	assert.Contains(t, RenderPlans(nil), "No saved plans")
	out = RenderPlans([]model.Plan{{ID: "abc", Name: "mine", Engine: "ucs", Weight: 52, CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}})
	assert.Contains(t, out, "abc")
	assert.Contains(t, out, "2024-03-01 09:30")
}

func TestSearchProgress(t *testing.T) {
	var buf syncBuffer
	p := NewSearchProgress(&buf, "Searching")
	p.Update(1024)
	p.Update(2048)
	p.Finish()
	assert.Contains(t, buf.String(), "Searching")
}

func TestInterruptHandler(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output)

	ctx, stop := handler.HandleInterrupts(context.Background(), true)
	defer stop()
	assert.False(t, handler.WasInterrupted())

	handler.interrupt()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled")
	}
	assert.True(t, handler.WasInterrupted())
	assert.Contains(t, output.String(), "Search interrupted!")
	assert.Contains(t, output.String(), "best schedule found so far")

	handler.interrupt()
	assert.Equal(t, 1, strings.Count(output.String(), "Search interrupted!"))
}

func TestInterruptHandlerStop(t *testing.T) {
	handler := NewInterruptHandler(nil)
	ctx, stop := handler.HandleInterrupts(context.Background(), false)
	stop()
	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
}

func TestScheduleStyles(t *testing.T) {
	assert.True(t, QuarterStyle.GetBold())
	assert.Equal(t, PrimaryColor, QuarterStyle.GetForeground())
	assert.Equal(t, SubtleColor, MutedRowStyle.GetForeground())
	assert.True(t, ProgressStyle.GetBold())
}
