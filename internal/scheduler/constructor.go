// Package scheduler turns course offerings, a requirement table and a
// student's requests into a weighted CSP whose solutions are schedules.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"

	"github.com/Veraticus/course-planner/internal/csp"
	"github.com/Veraticus/course-planner/internal/degree"
	"github.com/Veraticus/course-planner/internal/model"
)

// Defaults for the scheduling problem.
const (
	DefaultUnitsPerCourse = 4
	DefaultCoursesPerTerm = 2
	MaxBreadthAreas       = 2
	MaxFoundationsMissing = 2
)

// Engine identifies plans produced from the scheduling CSP.
const Engine = "csp"

// Configuration errors.
var (
	ErrTooManyBreadthAreas = errors.New("too many breadth areas requested")
	ErrTooManyFoundations  = errors.New("too many unsatisfied foundations")
	ErrUnknownTopic        = errors.New("unknown topic")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrNoQuarters          = errors.New("no quarters to schedule")
)

// Thresholds are the program-wide minimums a schedule must reach.
type Thresholds struct {
	Units      int
	DepthUnits int
	DepthA     int
	DepthB     int
}

// DefaultThresholds returns the minimums of the degree program.
func DefaultThresholds() Thresholds {
	slots := degree.DefaultDepthSlots()
	return Thresholds{
		Units:      degree.TotalUnitsRequired,
		DepthUnits: degree.DepthUnitsRequired,
		DepthA:     slots[model.DepthA],
		DepthB:     slots[model.DepthB],
	}
}

// Config describes one scheduling problem.
type Config struct {
	Courses                 model.ClassDatabase
	Topics                  map[string][]string
	CustomRequests          map[string]int
	Requirements            model.RequirementTable
	BreadthToSatisfy        []string
	FoundationsNotSatisfied []string
	// Thresholds overrides DefaultThresholds when set. Zero minimums are
	// honored.
	Thresholds *Thresholds
	// Seed drives the course order shuffle when Shuffle is set.
	Seed                      uint64
	UnitsPerCourse            int
	Shuffle                   bool
	SignificantImplementation bool
	PreferRewards             bool
}

func (c Config) thresholds() Thresholds {
	if c.Thresholds == nil {
		return DefaultThresholds()
	}
	return *c.Thresholds
}

// Validate checks the student's requests.
func (c Config) Validate() error {
	if len(c.BreadthToSatisfy) > MaxBreadthAreas {
		return fmt.Errorf("%w: %d, at most %d", ErrTooManyBreadthAreas, len(c.BreadthToSatisfy), MaxBreadthAreas)
	}
	if len(c.FoundationsNotSatisfied) > MaxFoundationsMissing {
		return fmt.Errorf("%w: %d, at most %d", ErrTooManyFoundations, len(c.FoundationsNotSatisfied), MaxFoundationsMissing)
	}
	if t := c.thresholds(); t.Units < 0 || t.DepthUnits < 0 || t.DepthA < 0 || t.DepthB < 0 {
		return fmt.Errorf("%w: negative threshold %+v", ErrInvalidRequest, t)
	}
	for topic, minimum := range c.CustomRequests {
		if _, ok := c.Topics[topic]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
		}
		if minimum < 0 {
			return fmt.Errorf("%w: %s minimum %d", ErrInvalidRequest, topic, minimum)
		}
	}
	if len(c.Courses) == 0 {
		return ErrNoQuarters
	}
	return nil
}

// Constructor builds the scheduling CSP.
type Constructor struct {
	lookup     model.Lookup
	topics     map[string]inSet
	cfg        Config
	quarters   []int
	thresholds Thresholds
}

// NewConstructor validates the configuration and prepares lookups.
func NewConstructor(cfg Config) (*Constructor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.UnitsPerCourse == 0 {
		cfg.UnitsPerCourse = DefaultUnitsPerCourse
	}

	topics := make(map[string]inSet, len(cfg.Topics))
	for name, codes := range cfg.Topics {
		topics[name] = inSet(lo.SliceToMap(codes, func(code string) (string, bool) { return code, true }))
	}

	return &Constructor{
		cfg:        cfg,
		lookup:     model.NewLookup(cfg.Requirements),
		topics:     topics,
		quarters:   cfg.Courses.Quarters(),
		thresholds: cfg.thresholds(),
	}, nil
}

// Quarters returns the scheduled quarter indices in order.
func (c *Constructor) Quarters() []int {
	return slices.Clone(c.quarters)
}

// ClassesVariable names the selection variable of a quarter.
func ClassesVariable(quarter int) string {
	return fmt.Sprintf("Quarter %d classes", quarter)
}

// aggregate is a per-quarter quantity summed over the program with a
// minimum total.
type aggregate struct {
	name      string
	suffix    string
	domain    []csp.Value
	factor    csp.BinaryFactor
	vars      []string
	maxPer    int
	threshold int
}

func (c *Constructor) aggregates() []*aggregate {
	u := c.cfg.UnitsPerCourse
	maxCount := DefaultCoursesPerTerm

	aggs := []*aggregate{
		{
			name:      "program units",
			suffix:    "units",
			domain:    csp.Ints(0, maxCount*u),
			factor:    quarterUnits{unitsPerCourse: u},
			maxPer:    maxCount * u,
			threshold: c.thresholds.Units,
		},
		{
			name:      "program depth units",
			suffix:    "depth units",
			domain:    csp.Ints(0, u, maxCount*u),
			factor:    countCourses{pred: inCategory{lookup: c.lookup, category: model.CategoryDepth}, perMatch: u},
			maxPer:    maxCount * u,
			threshold: c.thresholds.DepthUnits,
		},
		{
			name:      "program depth a",
			suffix:    "depth a classes",
			domain:    csp.Ints(0, 1),
			factor:    countCourses{pred: c.requirement(model.CategoryDepth, model.DepthA), perMatch: 1, saturate: 1},
			maxPer:    1,
			threshold: c.thresholds.DepthA,
		},
		{
			name:      "program depth b",
			suffix:    "depth b classes",
			domain:    csp.IntRange(0, maxCount),
			factor:    countCourses{pred: c.requirement(model.CategoryDepth, model.DepthB), perMatch: 1},
			maxPer:    maxCount,
			threshold: c.thresholds.DepthB,
		},
	}

	for _, area := range c.cfg.BreadthToSatisfy {
		aggs = append(aggs, &aggregate{
			name:      "program breadth " + area,
			suffix:    "breadth " + area + " classes",
			domain:    csp.IntRange(0, maxCount),
			factor:    countCourses{pred: c.requirement(model.CategoryBreadth, area), perMatch: 1},
			maxPer:    maxCount,
			threshold: 1,
		})
	}
	for _, area := range c.cfg.FoundationsNotSatisfied {
		aggs = append(aggs, &aggregate{
			name:      "program foundation " + area,
			suffix:    "foundation " + area + " classes",
			domain:    csp.IntRange(0, maxCount),
			factor:    countCourses{pred: c.requirement(model.CategoryFoundation, area), perMatch: 1},
			maxPer:    maxCount,
			threshold: 1,
		})
	}
	topics := lo.Keys(c.cfg.CustomRequests)
	slices.Sort(topics)
	for _, topic := range topics {
		aggs = append(aggs, &aggregate{
			name:      "program " + topic,
			suffix:    topic + " classes",
			domain:    csp.IntRange(0, maxCount),
			factor:    countCourses{pred: c.topics[topic], perMatch: 1},
			maxPer:    maxCount,
			threshold: c.cfg.CustomRequests[topic],
		})
	}
	if c.cfg.SignificantImplementation {
		aggs = append(aggs, &aggregate{
			name:      "program significant implementation",
			suffix:    "significant implementation classes",
			domain:    csp.Ints(0, 1),
			factor:    countCourses{pred: inCategory{lookup: c.lookup, category: model.CategorySignificantImplementation}, perMatch: 1, saturate: 1},
			maxPer:    1,
			threshold: 1,
		})
	}
	return aggs
}

func (c *Constructor) requirement(category model.RequirementCategory, subcategory string) inRequirement {
	return inRequirement{lookup: c.lookup, category: category, subcategory: subcategory}
}

// classesDomain lists the empty selection and every pair of distinct
// courses offered in the quarter that can both be taken at the fixed load.
func (c *Constructor) classesDomain(quarter int, rng *rand.Rand) []csp.Value {
	courses := lo.Filter(c.cfg.Courses[quarter], func(course model.Course, _ int) bool {
		return course.AllowsUnits(c.cfg.UnitsPerCourse)
	})
	courses = lo.UniqBy(courses, func(course model.Course) string { return course.Code() })
	if rng != nil {
		rng.Shuffle(len(courses), func(i, j int) { courses[i], courses[j] = courses[j], courses[i] })
	}

	domain := []csp.Value{model.NoClasses}
	for i := range courses {
		for j := i + 1; j < len(courses); j++ {
			domain = append(domain, model.TakeClasses(courses[i].Code(), courses[j].Code()))
		}
	}
	return domain
}

// CSP builds the scheduling problem. No search is performed.
func (c *Constructor) CSP() (*csp.CSP, error) {
	if len(c.quarters) == 0 {
		return nil, ErrNoQuarters
	}
	problem := csp.New()
	aggs := c.aggregates()

	var rng *rand.Rand
	if c.cfg.Shuffle {
		rng = rand.New(rand.NewPCG(c.cfg.Seed, c.cfg.Seed))
	}

	rewards := make(map[string]float64)
	for _, q := range c.quarters {
		for _, course := range c.cfg.Courses[q] {
			rewards[course.Code()] = course.Reward
		}
	}

	classVars := make([]string, 0, len(c.quarters))
	for _, q := range c.quarters {
		classes := ClassesVariable(q)
		domain := c.classesDomain(q, rng)
		if err := problem.AddVariable(classes, domain); err != nil {
			return nil, err
		}
		problem.AddUnaryFactor(classes, noSharedFoundation{lookup: c.lookup})
		if c.cfg.PreferRewards {
			problem.AddUnaryFactor(classes, rewardPreference{rewards: rewards})
		}
		classVars = append(classVars, classes)

		for _, agg := range aggs {
			name := fmt.Sprintf("Quarter %d %s", q, agg.suffix)
			if err := problem.AddVariable(name, agg.domain); err != nil {
				return nil, err
			}
			problem.AddBinaryFactor(classes, name, agg.factor)
			agg.vars = append(agg.vars, name)
		}
		slog.Debug("Added quarter", "quarter", q, "selections", len(domain))
	}

	for i := range classVars {
		for j := i + 1; j < len(classVars); j++ {
			problem.AddBinaryFactor(classVars[i], classVars[j], noRepeatCourse{})
			problem.AddBinaryFactor(classVars[i], classVars[j], noRepeatFoundation{lookup: c.lookup})
		}
	}

	for _, agg := range aggs {
		total, err := csp.CreateSumVariable(problem, agg.name, agg.vars, agg.maxPer*len(agg.vars))
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate %s: %w", agg.name, err)
		}
		problem.AddUnaryFactor(total, csp.AtLeast(agg.threshold))
	}

	slog.Info("Built scheduling CSP",
		"quarters", len(c.quarters),
		"variables", problem.NumVars(),
		"aggregates", len(aggs))
	return problem, nil
}

// ExtractSchedule turns the classes variables of an assignment into
// schedule rows ordered by quarter, then course code.
func (c *Constructor) ExtractSchedule(assignment csp.Assignment) []model.PlannedCourse {
	var rows []model.PlannedCourse
	for _, q := range c.quarters {
		sel, ok := assignment[ClassesVariable(q)].(model.Classes)
		if !ok {
			continue
		}
		for _, code := range sel.Courses() {
			rows = append(rows, model.PlannedCourse{
				Quarter: q,
				Course:  code,
				Units:   c.cfg.UnitsPerCourse,
			})
		}
	}
	return rows
}

// Plan projects an assignment onto a schedule of courses.
func (c *Constructor) Plan(assignment csp.Assignment) *model.Plan {
	plan := &model.Plan{Engine: Engine, Courses: c.ExtractSchedule(assignment)}
	plan.SortCourses()
	return plan
}
