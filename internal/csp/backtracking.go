package csp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// checkInterval is how many operations pass between context checks and
// progress callbacks.
const checkInterval = 1024

// Assignment maps every variable name to its value.
type Assignment map[string]Value

// Options controls the search heuristics.
type Options struct {
	// Progress, if set, is called periodically with the operation count.
	Progress func(numOperations int)
	// MCV picks the unassigned variable with the fewest consistent values.
	MCV bool
	// AC3 enforces arc consistency after every tentative assignment.
	AC3 bool
}

// Result collects the outcome of a search. An unsatisfiable problem yields
// an empty OptimalAssignment rather than an error.
type Result struct {
	OptimalAssignment            Assignment
	AllAssignments               []Assignment
	AllOptimalAssignments        []Assignment
	OptimalWeight                float64
	NumOptimalAssignments        int
	NumAssignments               int
	NumOperations                int
	FirstAssignmentNumOperations int
	Duration                     time.Duration
}

// Satisfiable reports whether at least one consistent assignment was found.
func (r *Result) Satisfiable() bool {
	return r.NumOptimalAssignments > 0
}

// Summary describes the search statistics in one line per fact.
func (r *Result) Summary() string {
	if !r.Satisfiable() {
		return fmt.Sprintf("No consistent assignment found in %d operations", r.NumOperations)
	}
	return fmt.Sprintf("Found %d optimal assignments with weight %g in %d operations\nFirst assignment took %d operations",
		r.NumOptimalAssignments, r.OptimalWeight, r.NumOperations, r.FirstAssignmentNumOperations)
}

// Solver runs weighted backtracking search.
type Solver struct {
	logger *slog.Logger
	opts   Options
}

// NewSolver creates a solver with the given heuristics.
func NewSolver(opts Options) *Solver {
	return &Solver{opts: opts, logger: slog.Default()}
}

// WithLogger sets the logger used for the search summary.
func (s *Solver) WithLogger(logger *slog.Logger) *Solver {
	s.logger = logger
	return s
}

// Solve enumerates every maximum-weight complete assignment of c. All
// branches are explored; the search stops early only when ctx is done, in
// which case the partial result is returned along with the context error.
func (s *Solver) Solve(ctx context.Context, c *CSP) (*Result, error) {
	start := time.Now()
	st := &search{
		ctx:        ctx,
		csp:        c,
		opts:       s.opts,
		result:     &Result{},
		assignment: make([]int, c.NumVars()),
		domains:    make([][]int, c.NumVars()),
	}
	for i, v := range c.vars {
		st.assignment[i] = -1
		dom := make([]int, len(v.domain))
		for j := range dom {
			dom[j] = j
		}
		st.domains[i] = dom
	}

	st.backtrack(0, 1)
	st.result.Duration = time.Since(start)

	if st.err != nil {
		s.logger.Warn("Search interrupted",
			"operations", st.result.NumOperations,
			"assignments", st.result.NumAssignments,
			"error", st.err)
		return st.result, fmt.Errorf("search interrupted: %w", st.err)
	}

	if st.result.Satisfiable() {
		s.logger.Info("Found optimal assignments",
			"optimal", st.result.NumOptimalAssignments,
			"weight", st.result.OptimalWeight,
			"operations", st.result.NumOperations,
			"first_assignment_operations", st.result.FirstAssignmentNumOperations,
			"duration", st.result.Duration)
	} else {
		s.logger.Info("No consistent assignment found",
			"operations", st.result.NumOperations,
			"duration", st.result.Duration)
	}
	return st.result, nil
}

type search struct {
	ctx        context.Context
	err        error
	csp        *CSP
	result     *Result
	assignment []int
	// domains holds value indices per variable. Slices are never modified
	// in place, so a snapshot only copies the outer slice.
	domains [][]int
	opts    Options
}

func (s *search) backtrack(numAssigned int, weight float64) {
	if s.err != nil {
		return
	}
	s.result.NumOperations++
	if s.result.NumOperations%checkInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return
		}
		if s.opts.Progress != nil {
			s.opts.Progress(s.result.NumOperations)
		}
	}

	if numAssigned == len(s.csp.vars) {
		s.record(weight)
		return
	}

	v := s.nextVariable()
	for _, val := range s.domains[v] {
		delta := s.deltaWeight(v, val)
		if delta == 0 {
			continue
		}
		s.assignment[v] = val
		if s.opts.AC3 {
			saved := slices.Clone(s.domains)
			s.domains[v] = []int{val}
			s.arcConsistency(v)
			s.backtrack(numAssigned+1, weight*delta)
			s.domains = saved
		} else {
			s.backtrack(numAssigned+1, weight*delta)
		}
		s.assignment[v] = -1
		if s.err != nil {
			return
		}
	}
}

func (s *search) record(weight float64) {
	r := s.result
	assignment := make(Assignment, len(s.assignment))
	for i, val := range s.assignment {
		v := s.csp.vars[i]
		assignment[v.name] = v.domain[val]
	}
	r.NumAssignments++
	r.AllAssignments = append(r.AllAssignments, assignment)

	if len(r.OptimalAssignment) > 0 && weight < r.OptimalWeight {
		return
	}
	if len(r.OptimalAssignment) > 0 && weight == r.OptimalWeight {
		r.NumOptimalAssignments++
		r.AllOptimalAssignments = append(r.AllOptimalAssignments, assignment)
	} else {
		r.NumOptimalAssignments = 1
		r.AllOptimalAssignments = []Assignment{assignment}
	}
	r.OptimalWeight = weight
	r.OptimalAssignment = assignment
	if r.FirstAssignmentNumOperations == 0 {
		r.FirstAssignmentNumOperations = r.NumOperations
	}
}

// deltaWeight is the factor product gained by assigning value index val to
// the unassigned variable v, given the current partial assignment.
func (s *search) deltaWeight(v, val int) float64 {
	if s.assignment[v] >= 0 {
		panic(fmt.Sprintf("csp: delta weight for assigned variable %s", s.csp.vars[v].name))
	}
	variable := s.csp.vars[v]
	w := variable.unaryAt(val)
	if w == 0 {
		return 0
	}
	for _, n := range variable.neighbors {
		other := s.assignment[n]
		if other < 0 {
			continue
		}
		w *= variable.binary[n].weight(val, other)
		if w == 0 {
			return 0
		}
	}
	return w
}

// nextVariable returns the first unassigned variable in insertion order, or
// with MCV the one with the fewest consistent values. Ties go to the
// earliest variable.
func (s *search) nextVariable() int {
	if !s.opts.MCV {
		for i, val := range s.assignment {
			if val < 0 {
				return i
			}
		}
		panic("csp: no unassigned variable")
	}

	chosen, least := -1, -1
	for i, val := range s.assignment {
		if val >= 0 {
			continue
		}
		consistent := 0
		for _, candidate := range s.domains[i] {
			if s.deltaWeight(i, candidate) > 0 {
				consistent++
			}
		}
		if chosen < 0 || consistent < least {
			chosen, least = i, consistent
		}
	}
	if chosen < 0 {
		panic("csp: no unassigned variable")
	}
	return chosen
}

// arcConsistency runs AC-3 outward from the variable that was just fixed.
func (s *search) arcConsistency(start int) {
	queue := []int{start}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, n := range s.csp.vars[curr].neighbors {
			if s.revise(n, curr) {
				queue = append(queue, n)
			}
		}
	}
}

// revise drops values of v1 with a zero unary weight or without a
// supporting value in the current domain of v2. The pruned domain is a new
// slice.
func (s *search) revise(v1, v2 int) bool {
	variable := s.csp.vars[v1]
	table := variable.binary[v2]

	inDomain := make([]bool, len(s.csp.vars[v2].domain))
	for _, b := range s.domains[v2] {
		inDomain[b] = true
	}

	current := s.domains[v1]
	kept := make([]int, 0, len(current))
	for _, a := range current {
		if variable.unaryAt(a) == 0 {
			continue
		}
		for b := range table.rows[a] {
			if inDomain[b] {
				kept = append(kept, a)
				break
			}
		}
	}
	if len(kept) == len(current) {
		return false
	}
	s.domains[v1] = kept
	return true
}
