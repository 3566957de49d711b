package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/course-planner/internal/cli"
	"github.com/Veraticus/course-planner/internal/common"
	"github.com/Veraticus/course-planner/internal/storage"
)

func plansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Manage saved schedules",
	}
	cmd.AddCommand(listPlansCmd())
	cmd.AddCommand(showPlanCmd())
	return cmd
}

func listPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			plans, err := store.ListPlans(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), cli.RenderPlans(plans))
			return err
		},
	}
}

func showPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			plan, err := store.GetPlan(ctx, args[0])
			if errors.Is(err, storage.ErrPlanNotFound) {
				return common.NewUserError("no saved plan with id "+args[0], common.ErrNotFound)
			}
			if err != nil {
				return err
			}
			db, err := store.GetClassDatabase(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := writeLine(out, cli.FormatTitle(fmt.Sprintf("%s (%s)", plan.ID, plan.CreatedAt.Format("2006-01-02 15:04")))); err != nil {
				return err
			}
			_, err = fmt.Fprint(out, cli.RenderSchedule(plan, db))
			if profile, _ := cmd.Flags().GetBool("profile"); err == nil && profile {
				_, err = fmt.Fprint(out, cli.RenderBox("Profile", plan.Profile))
			}
			return err
		},
	}
	cmd.Flags().Bool("profile", false, "also print the profile the schedule was planned for")
	return cmd
}
