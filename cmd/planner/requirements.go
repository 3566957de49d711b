package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/course-planner/internal/cli"
	"github.com/Veraticus/course-planner/internal/config"
	"github.com/Veraticus/course-planner/internal/model"
)

func requirementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "List the requirement table",
		RunE:  runRequirements,
	}
	cmd.Flags().String("category", "", "only show rows of this category")
	return cmd
}

func runRequirements(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
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

	if name, _ := cmd.Flags().GetString("category"); name != "" {
		category, err := model.ParseRequirementCategory(name)
		if err != nil {
			return err
		}
		reqs = lo.Filter(reqs, func(r model.Requirement, _ int) bool { return r.Category == category })
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), cli.RenderRequirements(reqs))
	return err
}
