package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/course-planner/internal/cli"
	"github.com/Veraticus/course-planner/internal/common"
	"github.com/Veraticus/course-planner/internal/config"
	"github.com/Veraticus/course-planner/internal/csp"
	"github.com/Veraticus/course-planner/internal/degree"
	"github.com/Veraticus/course-planner/internal/metrics"
	"github.com/Veraticus/course-planner/internal/model"
	"github.com/Veraticus/course-planner/internal/scheduler"
	"github.com/Veraticus/course-planner/internal/search"
	"github.com/Veraticus/course-planner/internal/storage"
)

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a course schedule",
		Long: `Plan a schedule for the configured profile.

The default csp engine finds every maximum-weight schedule of the
scheduling constraint problem and prints the first. The ucs engine runs a
uniform-cost search that prefers highly rated courses.`,
		RunE: runPlan,
	}

	// Engine flags
	cmd.Flags().String("engine", scheduler.Engine, "search engine (csp, ucs)")
	cmd.Flags().Bool("mcv", false, "order variables by most constrained value")
	cmd.Flags().Bool("ac3", false, "enforce arc consistency after each assignment")
	cmd.Flags().Duration("timeout", 0, "stop searching after this long and show the best schedule so far")
	cmd.Flags().Int("max-expanded", search.DefaultMaxExpanded, "state expansion limit for the ucs engine")

	// Profile overrides
	cmd.Flags().StringSlice("breadth", nil, "breadth areas to satisfy (exactly two)")
	cmd.Flags().StringSlice("foundation", nil, "foundation areas not yet satisfied (at most two)")
	cmd.Flags().StringToInt("topic", nil, "minimum courses per topic, e.g. nlp=2")
	cmd.Flags().Int("years", 0, "number of academic years to plan")
	cmd.Flags().Int("internship", 0, "quarter index to leave empty for an internship")

	// Output
	cmd.Flags().Bool("save", false, "save the schedule to the database")
	cmd.Flags().String("name", "", "name for the saved schedule")
	cmd.Flags().String("metrics-file", "", "write search metrics to this Prometheus textfile")
	cmd.Flags().Bool("no-progress", false, "hide the search spinner")

	_ = viper.BindPFlag(config.KeyMetricsTextfile, cmd.Flags().Lookup("metrics-file"))

	return cmd
}

// profileFromFlags loads the configured profile and applies flag overrides.
func profileFromFlags(cmd *cobra.Command) (config.Profile, error) {
	profile, err := config.LoadProfile(viper.GetViper())
	if err != nil {
		return config.Profile{}, common.NewUserError("invalid profile", err)
	}

	flags := cmd.Flags()
	if flags.Changed("breadth") {
		profile.BreadthAreas, _ = flags.GetStringSlice("breadth")
	}
	if flags.Changed("foundation") {
		profile.FoundationsNotSatisfied, _ = flags.GetStringSlice("foundation")
	}
	if flags.Changed("topic") {
		profile.Topics, _ = flags.GetStringToInt("topic")
	}
	if flags.Changed("years") {
		profile.Years, _ = flags.GetInt("years")
	}
	if flags.Changed("internship") {
		profile.InternshipQuarter, _ = flags.GetInt("internship")
	}

	if err := profile.Validate(); err != nil {
		return config.Profile{}, common.NewUserError("invalid profile", err)
	}
	return profile, nil
}

type planInputs struct {
	db       model.ClassDatabase
	topics   map[string][]string
	reqs     model.RequirementTable
	start    *degree.Progress
	profile  config.Profile
	settings config.Settings
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	profile, err := profileFromFlags(cmd)
	if err != nil {
		return err
	}
	settings := config.LoadSettings(viper.GetViper())

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reqs, err := loadRequirements(ctx, store, settings)
	if err != nil {
		return err
	}
	topics, err := loadTopics(settings)
	if err != nil {
		return err
	}
	db, err := loadClassDatabase(ctx, store, settings, reqs)
	if err != nil {
		return err
	}

	start, done, err := applyHistory(reqs, db, profile.Taken, profile.Waived)
	if err != nil {
		return err
	}
	db = withoutCourses(db.Limit(profile.MaxQuarter()), done)
	if profile.InternshipQuarter > 0 {
		db = db.Without(profile.InternshipQuarter)
	}

	in := planInputs{db: db, topics: topics, reqs: reqs, start: start, profile: profile, settings: settings}

	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := interrupts.HandleInterrupts(ctx, true)
	defer stop()

	recorder := metrics.New()
	var plan *model.Plan
	switch engine, _ := cmd.Flags().GetString("engine"); engine {
	case scheduler.Engine:
		plan, err = planCSP(ctx, cmd, in, recorder)
	case search.Engine:
		plan, err = planUCS(ctx, cmd, in, recorder)
	default:
		err = common.NewUserError(fmt.Sprintf("unknown engine %q", engine), common.ErrInvalidConfig)
	}

	if path := viper.GetString(config.KeyMetricsTextfile); path != "" {
		if werr := recorder.WriteTextfile(config.ExpandPath(path)); werr != nil {
			common.LogError(werr, "Failed to write metrics", common.Fields{"path": path})
		}
	}
	if err != nil {
		return err
	}

	if _, err := fmt.Fprint(out, cli.RenderSchedule(plan, db)); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		if interrupts.WasInterrupted() {
			return writeLine(out, cli.FormatWarning("Not saving a schedule from an interrupted search."))
		}
		return savePlan(ctx, cmd, plan, profile, store)
	}
	return nil
}

func planCSP(ctx context.Context, cmd *cobra.Command, in planInputs, recorder *metrics.Recorder) (*model.Plan, error) {
	constructor, err := scheduler.NewConstructor(scheduler.Config{
		Courses:                   in.db,
		Topics:                    in.topics,
		CustomRequests:            in.profile.Topics,
		Requirements:              in.reqs,
		BreadthToSatisfy:          in.profile.BreadthAreas,
		FoundationsNotSatisfied:   in.profile.FoundationsNotSatisfied,
		Seed:                      in.profile.Seed,
		Shuffle:                   in.profile.Shuffle,
		SignificantImplementation: in.profile.SignificantImplementation,
		PreferRewards:             in.profile.PreferRewards,
	})
	if err != nil {
		return nil, common.NewUserError("invalid planning request", err)
	}
	problem, err := constructor.CSP()
	if err != nil {
		return nil, err
	}

	mcv, _ := cmd.Flags().GetBool("mcv")
	ac3, _ := cmd.Flags().GetBool("ac3")
	opts := csp.Options{MCV: mcv, AC3: ac3}
	finish := func() {}
	if quiet, _ := cmd.Flags().GetBool("no-progress"); !quiet {
		spinner := cli.NewSearchProgress(cmd.ErrOrStderr(), "Searching schedules")
		opts.Progress = spinner.Update
		finish = spinner.Finish
	}

	result, err := csp.NewSolver(opts).Solve(ctx, problem)
	finish()
	recorder.ObserveCSP(result, err)
	if err != nil {
		if result == nil || !result.Satisfiable() {
			return nil, common.NewUserError("search stopped before any schedule was found", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning("Search stopped early; the schedule may not be optimal."))
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(result.Summary()))
	if !result.Satisfiable() {
		return nil, common.NewUserError("no schedule satisfies the profile", common.ErrNoSchedule)
	}

	plan := constructor.Plan(result.OptimalAssignment)
	plan.Weight = result.OptimalWeight
	return plan, nil
}

func planUCS(ctx context.Context, cmd *cobra.Command, in planInputs, recorder *metrics.Recorder) (*model.Plan, error) {
	maxExpanded, _ := cmd.Flags().GetInt("max-expanded")
	problem := search.Problem{
		Courses:      in.db,
		Requirements: in.reqs,
		Start:        in.start,
		MaxQuarter:   in.profile.MaxQuarter(),
		MaxExpanded:  maxExpanded,
	}

	began := time.Now()
	result, err := search.Solve(ctx, problem)
	recorder.ObserveUCS(result, time.Since(began), err)
	if err != nil {
		if errors.Is(err, search.ErrExpansionLimit) {
			return nil, common.NewUserError("search gave up; raise --max-expanded", err)
		}
		return nil, err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(
		fmt.Sprintf("Found a schedule with cost %g after expanding %d states", result.Cost, result.Expanded)))
	if !result.Satisfied {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("The schedule does not satisfy every requirement."))
	}
	return result.Plan, nil
}

func savePlan(ctx context.Context, cmd *cobra.Command, plan *model.Plan, profile config.Profile, store *storage.Store) error {
	snapshot, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	plan.Profile = string(snapshot)
	plan.Name, _ = cmd.Flags().GetString("name")
	if plan.Name == "" {
		plan.Name = profile.Name
	}

	if err := store.SavePlan(ctx, plan); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return writeLine(cmd.OutOrStdout(), cli.FormatSuccess("Saved plan "+plan.ID))
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
