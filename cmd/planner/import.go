package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/course-planner/internal/catalog"
	"github.com/Veraticus/course-planner/internal/cli"
	"github.com/Veraticus/course-planner/internal/common"
	"github.com/Veraticus/course-planner/internal/config"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the course catalog and requirement table",
		Long: `Import course offerings and a requirement table into the database.

Course files are read from <dir>/<year>_<department>.csv for every
configured academic year and department. The requirement table is a CSV
or XLSX file with Course, Category and Subcategory columns; without one
the built-in program is imported.`,
		RunE: runImport,
	}

	cmd.Flags().String("dir", "", "directory holding <year>_<department>.csv course files")
	cmd.Flags().StringSlice("years", nil, "academic years to import, e.g. 2021-2022")
	cmd.Flags().StringSlice("departments", nil, "departments to import, e.g. CS,EE")
	cmd.Flags().String("requirements", "", "requirement table file (.csv or .xlsx)")
	cmd.Flags().String("sheet", "", "worksheet holding the requirement table (xlsx only)")

	_ = viper.BindPFlag(config.KeyCatalogDir, cmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag(config.KeyCatalogYears, cmd.Flags().Lookup("years"))
	_ = viper.BindPFlag(config.KeyCatalogDepts, cmd.Flags().Lookup("departments"))
	_ = viper.BindPFlag(config.KeyRequirementsPath, cmd.Flags().Lookup("requirements"))
	_ = viper.BindPFlag(config.KeyRequirementsSheet, cmd.Flags().Lookup("sheet"))

	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	// Flag paths are relative to the working directory, not the config file.
	for flag, key := range map[string]string{"dir": config.KeyCatalogDir, "requirements": config.KeyRequirementsPath} {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		path, _ := cmd.Flags().GetString(flag)
		abs, err := filepath.Abs(config.ExpandPath(path))
		if err != nil {
			return fmt.Errorf("failed to resolve --%s: %w", flag, err)
		}
		viper.Set(key, abs)
	}

	settings := config.LoadSettings(viper.GetViper())
	if settings.CatalogDir == "" {
		return common.NewUserError("no catalog directory; pass --dir or set catalog.dir", common.ErrMissingConfig)
	}

	reqs := catalog.DefaultRequirements()
	if settings.RequirementsPath != "" {
		var err error
		if reqs, err = catalog.LoadRequirements(settings.RequirementsPath, settings.RequirementsSheet); err != nil {
			return err
		}
	}

	courses, err := catalog.LoadCourses(ctx, catalog.Source{
		Requirements: reqs,
		Dir:          settings.CatalogDir,
		Years:        settings.CatalogYears,
		Departments:  settings.CatalogDepts,
	})
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		return common.NewUserError("the catalog files hold no offered courses", common.ErrNoCatalog)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveRequirements(ctx, reqs); err != nil {
		return err
	}
	if err := store.SaveCourses(ctx, courses); err != nil {
		return err
	}

	common.LogInfo("Imported catalog", common.Fields{
		"courses":      len(courses),
		"requirements": len(reqs),
		"dir":          settings.CatalogDir,
	})
	return writeLine(cmd.OutOrStdout(), cli.FormatSuccess(
		fmt.Sprintf("Imported %d courses and %d requirement rows", len(courses), len(reqs))))
}
