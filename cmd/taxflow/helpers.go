package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/taxflow/internal/common"
	"github.com/Veraticus/taxflow/internal/config"
	"github.com/Veraticus/taxflow/internal/engine"
	"github.com/Veraticus/taxflow/internal/model"
	"github.com/Veraticus/taxflow/internal/storage"
	"github.com/Veraticus/taxflow/internal/tables"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// loadSettings resolves the validated configuration.
func loadSettings() (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Settings{}, common.NewUserError("Invalid configuration", err)
	}
	return settings, nil
}

// initStorage opens the schedule database and brings its schema up to date.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadCatalog returns the built-in schedules plus any imported into the
// database. A database that does not exist yet contributes nothing.
func loadCatalog(ctx context.Context, settings config.Settings) (*tables.Catalog, error) {
	catalog, err := tables.Embedded()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in tables: %w", err)
	}

	if _, err := os.Stat(settings.DatabasePath); errors.Is(err, fs.ErrNotExist) {
		return catalog, nil
	}

	store, err := initStorage(ctx, settings.DatabasePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	records, err := store.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	schedules, err := store.LoadSchedules(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if _, known := catalog.Info(r.Jurisdiction); !known {
			catalog.Describe(r.Jurisdiction, r.Name, r.Currency)
		}
	}

	skipped, err := catalog.Merge(schedules)
	if err != nil {
		return nil, fmt.Errorf("failed to merge stored schedules: %w", err)
	}
	for _, s := range skipped {
		slog.Debug("Stored schedule shadowed by built-in table", "jurisdiction", s.Jurisdiction, "year", s.Year)
	}

	return catalog, nil
}

// newCalculator builds the calculator for the configured inflation rate.
func newCalculator(settings config.Settings, catalog *tables.Catalog) *engine.Calculator {
	return engine.NewWithConfig(catalog, engine.Config{InflationRate: settings.InflationRate})
}

// currencyFor returns the catalog's currency for j, defaulting to USD.
func currencyFor(catalog *tables.Catalog, j model.Jurisdiction) string {
	if info, ok := catalog.Info(j); ok && info.Currency != "" {
		return info.Currency
	}
	return "USD"
}

// addInputFlags registers the flags that describe a TaxInput.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("income", "i", 0, "gross income")
	cmd.Flags().StringP("status", "s", "", "filing status (single, mfj, mfs, hoh)")
	cmd.Flags().IntP("year", "y", 0, "tax year (default from config)")
	cmd.Flags().StringP("jurisdiction", "j", "", "jurisdiction (us-federal, uk, ...)")
	cmd.Flags().Float64("itemized", 0, "itemized deduction; when set it replaces the standard deduction")
	cmd.Flags().Float64("credits", 0, "non-refundable tax credits")
}

// addOutputFlag registers --output.
func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", outputText, "output format (text, json)")
}

// readInput builds a TaxInput from the command's flags, falling back to the
// configured defaults.
func readInput(cmd *cobra.Command, settings config.Settings) (model.TaxInput, error) {
	income, _ := cmd.Flags().GetFloat64("income")
	statusFlag, _ := cmd.Flags().GetString("status")
	year, _ := cmd.Flags().GetInt("year")
	jurisdiction, _ := cmd.Flags().GetString("jurisdiction")
	itemized, _ := cmd.Flags().GetFloat64("itemized")
	credits, _ := cmd.Flags().GetFloat64("credits")

	in := model.TaxInput{
		Jurisdiction:         settings.Jurisdiction,
		FilingStatus:         settings.FilingStatus,
		Year:                 settings.Year,
		GrossIncome:          income,
		ItemizedDeduction:    itemized,
		Credits:              credits,
		UseStandardDeduction: !cmd.Flags().Changed("itemized"),
	}

	if statusFlag != "" {
		status, err := model.ParseFilingStatus(statusFlag)
		if err != nil {
			return model.TaxInput{}, common.NewUserError("Unknown filing status", err)
		}
		in.FilingStatus = status
	}
	if cmd.Flags().Changed("year") {
		if year <= 0 {
			return model.TaxInput{}, common.NewUserError(fmt.Sprintf("Invalid tax year %d", year), nil)
		}
		in.Year = year
	}
	if j := strings.TrimSpace(jurisdiction); j != "" {
		in.Jurisdiction = model.Jurisdiction(j)
	}

	return in.Normalized(), nil
}

// readOutput returns the validated --output value.
func readOutput(cmd *cobra.Command) (string, error) {
	output, _ := cmd.Flags().GetString("output")
	switch output {
	case outputText, outputJSON:
		return output, nil
	default:
		return "", common.NewUserError(fmt.Sprintf("Unknown output format %q (use text or json)", output), nil)
	}
}

// calculatorFor loads settings, the catalog and the calculator a command needs.
func calculatorFor(ctx context.Context) (config.Settings, *tables.Catalog, *engine.Calculator, error) {
	settings, err := loadSettings()
	if err != nil {
		return config.Settings{}, nil, nil, err
	}
	catalog, err := loadCatalog(ctx, settings)
	if err != nil {
		return config.Settings{}, nil, nil, err
	}
	return settings, catalog, newCalculator(settings, catalog), nil
}

// tableError turns a missing-table failure into a message naming what is available.
func tableError(err error, catalog *tables.Catalog, j model.Jurisdiction) error {
	if !errors.Is(err, common.ErrTableNotFound) {
		return err
	}
	years := catalog.Years(j)
	if len(years) == 0 {
		return common.NewUserError(fmt.Sprintf("No tax tables for jurisdiction %q (see 'taxflow tables list')", j), err)
	}
	return common.NewUserError(fmt.Sprintf("No tax tables for that year; %s covers %d onwards", j, years[0]), err)
}
