package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/taxflow/internal/cli"
	"github.com/Veraticus/taxflow/internal/common"
	"github.com/Veraticus/taxflow/internal/model"
	"github.com/Veraticus/taxflow/internal/storage"
	"github.com/Veraticus/taxflow/internal/tables"
)

func tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage tax schedules",
		Long: `List the available tax schedules, import new years from YAML files, or
export a jurisdiction's schedules in the same format.

Built-in schedules ship with taxflow. Imported schedules are stored in the
schedule database and can be added but never changed.`,
	}

	cmd.AddCommand(tablesListCmd())
	cmd.AddCommand(tablesImportCmd())
	cmd.AddCommand(tablesExportCmd())

	return cmd
}

func tablesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available jurisdictions and years",
		Args:  cobra.NoArgs,
		RunE:  runTablesList,
	}
	addOutputFlag(cmd)
	return cmd
}

type scheduleListing struct {
	Jurisdiction model.Jurisdiction `json:"jurisdiction"`
	Name         string             `json:"name"`
	Currency     string             `json:"currency"`
	Years        []int              `json:"years"`
}

func runTablesList(cmd *cobra.Command, _ []string) error {
	output, err := readOutput(cmd)
	if err != nil {
		return err
	}

	_, catalog, _, err := calculatorFor(cmd.Context())
	if err != nil {
		return err
	}

	var listings []scheduleListing
	for _, info := range catalog.Jurisdictions() {
		listings = append(listings, scheduleListing{
			Jurisdiction: info.Jurisdiction,
			Name:         info.Name,
			Currency:     info.Currency,
			Years:        catalog.Years(info.Jurisdiction),
		})
	}

	w := cmd.OutOrStdout()
	if output == outputJSON {
		return cli.RenderJSON(w, listings)
	}

	if _, err := fmt.Fprintln(w, cli.FormatIconTitle(cli.StoreIcon, "Tax schedules")); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", "Jurisdiction", "Name", "Currency", "Years"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, l := range listings {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Jurisdiction, l.Name, l.Currency, formatYears(l.Years)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return tw.Flush()
}

func tablesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import schedules from a YAML file",
		Long: `Validate every year in a schedule file and add it to the schedule
database. Years that are already stored, or built in, are skipped.`,
		Example: `  taxflow tables import ./us-federal-2025.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTablesImport,
	}
}

func runTablesImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return common.NewUserError("Cannot open schedule file", err)
	}
	defer func() { _ = f.Close() }()

	file, schedules, err := tables.Parse(f)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("Invalid schedule file %s", path), err)
	}

	builtin, err := tables.Embedded()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, settings.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	meta := storage.ScheduleMeta{
		Name:     file.Name,
		Currency: file.Currency,
		Source:   filepath.Base(path),
	}

	w := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Importing %d schedules from %s", len(schedules), path))); err != nil {
		return err
	}

	imported := 0
	for _, s := range schedules {
		if _, ok := builtin.Schedule(s.Jurisdiction, s.Year); ok {
			if _, err := fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("%s %d is built in; skipped", s.Jurisdiction, s.Year))); err != nil {
				return err
			}
			continue
		}

		err := store.SaveSchedule(ctx, s, meta)
		if errors.Is(err, common.ErrDuplicateEntry) {
			if _, err := fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("%s %d already imported; skipped", s.Jurisdiction, s.Year))); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			common.LogError(err, "Failed to import schedule", common.Fields{
				"jurisdiction": s.Jurisdiction,
				"year":         s.Year,
				"source":       meta.Source,
			})
			return fmt.Errorf("failed to import %s %d: %w", s.Jurisdiction, s.Year, err)
		}

		common.LogDebug("Imported schedule", common.Fields{
			"jurisdiction": s.Jurisdiction,
			"year":         s.Year,
			"statuses":     len(s.Brackets),
		})
		imported++
	}

	_, err = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("%s Imported %d of %d schedules into %s",
		cli.StoreIcon, imported, len(schedules), store.Path())))
	return err
}

func tablesExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <jurisdiction>",
		Short: "Write a jurisdiction's schedules as YAML",
		Long: `Print every schedule of a jurisdiction in the import file format. The
output is a starting point for adding a new year.`,
		Example: `  taxflow tables export us-federal > us-federal.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTablesExport,
	}
}

func runTablesExport(cmd *cobra.Command, args []string) error {
	_, catalog, _, err := calculatorFor(cmd.Context())
	if err != nil {
		return err
	}

	j := model.Jurisdiction(args[0])
	schedules := catalog.Schedules(j)
	if len(schedules) == 0 {
		return tableError(common.ErrTableNotFound, catalog, j)
	}

	info, _ := catalog.Info(j)
	return tables.Encode(cmd.OutOrStdout(), info.Name, info.Currency, schedules)
}

// formatYears collapses consecutive years into ranges: 2020-2022, 2024.
func formatYears(years []int) string {
	var parts []string
	for i := 0; i < len(years); {
		j := i
		for j+1 < len(years) && years[j+1] == years[j]+1 {
			j++
		}
		if i == j {
			parts = append(parts, strconv.Itoa(years[i]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", years[i], years[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ", ")
}
