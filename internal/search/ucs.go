// Package search plans a schedule with uniform-cost search over
// quarter-by-quarter course selections.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/Veraticus/course-planner/internal/degree"
	"github.com/Veraticus/course-planner/internal/model"
)

// Defaults for the search problem.
const (
	MinUnitsPerQuarter = 8
	MaxUnitsPerQuarter = 12
	MaxCourseReward    = 5
	DefaultMaxExpanded = 100000
)

// Engine identifies plans produced by uniform-cost search.
const Engine = "ucs"

// ErrExpansionLimit is returned when the search gives up before reaching an
// end state.
var ErrExpansionLimit = errors.New("expansion limit reached")

// Problem is a course planning search problem.
type Problem struct {
	Courses      model.ClassDatabase
	Requirements model.RequirementTable
	// Start is the progress before the first quarter, e.g. after waivers.
	Start *degree.Progress
	// FirstQuarter is the first quarter courses may be scheduled in. Zero
	// means quarter 1.
	FirstQuarter int
	MaxQuarter   int
	MaxExpanded  int
}

type node struct {
	parent   *node
	progress *degree.Progress
	courses  []model.PlannedCourse
	quarter  int
}

// Result is the cheapest schedule found.
type Result struct {
	Plan      *model.Plan
	Progress  *degree.Progress
	Cost      float64
	Expanded  int
	Satisfied bool
}

// Action is one quarter's enrollment: two courses and their units.
type Action [2]model.PlannedCourse

// Solve runs uniform-cost search from the start state. The search ends when
// the program is satisfied or the last quarter is reached.
func Solve(ctx context.Context, p Problem) (*Result, error) {
	if p.MaxExpanded == 0 {
		p.MaxExpanded = DefaultMaxExpanded
	}
	if p.FirstQuarter == 0 {
		p.FirstQuarter = 1
	}
	start := p.Start
	if start == nil {
		start = degree.NewProgress(p.Requirements)
	}

	f := &frontier{}
	f.push(&node{progress: start.Clone(), quarter: p.FirstQuarter - 1}, 0)
	explored := make(map[string]bool)

	expanded := 0
	for f.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search interrupted: %w", err)
		}
		n, cost := f.pop()
		key := n.key()
		if explored[key] {
			continue
		}
		explored[key] = true

		if p.isEnd(n) {
			slog.Info("Uniform cost search finished",
				"cost", cost,
				"expanded", expanded,
				"quarter", n.quarter,
				"satisfied", n.progress.IsProgramSatisfied())
			return &Result{
				Plan:      n.plan(cost),
				Progress:  n.progress,
				Cost:      cost,
				Expanded:  expanded,
				Satisfied: n.progress.IsProgramSatisfied(),
			}, nil
		}

		expanded++
		if expanded > p.MaxExpanded {
			return nil, fmt.Errorf("%w: %d states", ErrExpansionLimit, p.MaxExpanded)
		}
		for _, succ := range p.successors(n) {
			if !explored[succ.node.key()] {
				f.push(succ.node, cost+succ.cost)
			}
		}
	}
	return nil, fmt.Errorf("no schedule reaches quarter %d", p.MaxQuarter)
}

func (p Problem) isEnd(n *node) bool {
	return n.quarter >= p.MaxQuarter || n.progress.IsProgramSatisfied()
}

type successor struct {
	node *node
	cost float64
}

// actions lists the enrollments available in the quarter after n: pairs of
// untaken courses offered then that each still satisfy a requirement, with
// unit loads between MinUnitsPerQuarter and MaxUnitsPerQuarter.
func (p Problem) actions(n *node) []Action {
	quarter := n.quarter + 1
	var candidates []model.Course
	for _, c := range p.Courses[quarter] {
		if n.progress.CoursesTaken[c.Code()] {
			continue
		}
		if len(n.progress.RequirementsSatisfiedByCourse(p.Requirements, c)) == 0 {
			continue
		}
		candidates = append(candidates, c)
	}

	var actions []Action
	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			if a.Code() == b.Code() {
				continue
			}
			for ua := a.UnitsMin; ua <= a.UnitsMax; ua++ {
				for ub := b.UnitsMin; ub <= b.UnitsMax; ub++ {
					if total := ua + ub; total < MinUnitsPerQuarter || total > MaxUnitsPerQuarter {
						continue
					}
					actions = append(actions, Action{
						{Quarter: quarter, Course: a.Code(), Units: ua},
						{Quarter: quarter, Course: b.Code(), Units: ub},
					})
				}
			}
		}
	}
	return actions
}

func (p Problem) successors(n *node) []successor {
	actions := p.actions(n)
	if len(actions) == 0 {
		// Nothing useful is offered; move on to the next quarter.
		return []successor{{node: n.child(nil, n.progress.Clone()), cost: 0}}
	}

	offered := make(map[string]model.Course)
	for _, c := range p.Courses[n.quarter+1] {
		offered[c.Code()] = c
	}

	out := make([]successor, 0, len(actions))
	for _, a := range actions {
		progress := n.progress.Clone()
		for _, pc := range a {
			// The second course may no longer help once the first is
			// applied; it still counts as taken.
			progress.ApplyCourse(p.Requirements, offered[pc.Course], pc.Units)
		}
		out = append(out, successor{
			node: n.child(a[:], progress),
			cost: quarterCost(a, offered),
		})
	}
	return out
}

// quarterCost charges MaxCourseReward per unit minus the reward earned per
// unit, so cost is non-negative and lower for better-rated courses.
func quarterCost(a Action, courses map[string]model.Course) float64 {
	total := 0.0
	for _, pc := range a {
		reward := min(max(courses[pc.Course].Reward, 0), MaxCourseReward)
		total += float64(pc.Units) * (MaxCourseReward - reward)
	}
	return total
}

func (n *node) child(courses []model.PlannedCourse, progress *degree.Progress) *node {
	return &node{
		parent:   n,
		progress: progress,
		courses:  slices.Clone(courses),
		quarter:  n.quarter + 1,
	}
}

// key identifies a state by quarter, courses taken and remaining requirements.
func (n *node) key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(n.quarter))
	b.WriteByte('|')
	p := n.progress
	b.WriteString(strings.Join(slices.Sorted(maps.Keys(p.CoursesTaken)), ","))
	// fmt prints maps with sorted keys.
	fmt.Fprintf(&b, "|%v|%v|%v|%d|%d|%d|%d|%t",
		p.FoundationsLeft(), p.BreadthLeft(), p.DepthAreasLeft,
		p.DepthUnitsLeft, p.FoundationUnitsCounted, p.SeminarUnitsTaken,
		p.TotalRequirementUnitsTaken, p.SignificantImplementationSatisfied)
	return b.String()
}

func (n *node) plan(cost float64) *model.Plan {
	plan := &model.Plan{Engine: Engine, Weight: cost}
	for cur := n; cur != nil; cur = cur.parent {
		plan.Courses = append(plan.Courses, cur.courses...)
	}
	plan.SortCourses()
	return plan
}
