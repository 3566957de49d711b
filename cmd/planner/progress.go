package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/course-planner/internal/cli"
	"github.com/Veraticus/course-planner/internal/config"
)

func progressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show remaining degree requirements",
		Long: `Apply waived and taken courses to a fresh degree record and show
what is left to satisfy.

Courses from the profile's taken and waived lists are applied first.`,
		Example: `  planner progress --waived "CS 103" --taken "CS 221:4" --taken "CS 229:3"`,
		RunE:    runProgress,
	}

	cmd.Flags().StringArray("taken", nil, "course taken, as CODE:UNITS (repeatable)")
	cmd.Flags().StringArray("waived", nil, "foundation course waived (repeatable)")

	return cmd
}

func runProgress(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	settings := config.LoadSettings(viper.GetViper())

	profile, err := config.LoadProfile(viper.GetViper())
	if err != nil {
		return err
	}
	taken, _ := cmd.Flags().GetStringArray("taken")
	waived, _ := cmd.Flags().GetStringArray("waived")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reqs, err := loadRequirements(ctx, store, settings)
	if err != nil {
		return err
	}
	// An empty catalog is fine here; codes resolve without it.
	db, _ := store.GetClassDatabase(ctx)

	progress, _, err := applyHistory(reqs, db,
		append(profile.Taken, taken...),
		append(profile.Waived, waived...))
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), cli.RenderProgress(progress))
	return err
}
