package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/taxflow/internal/common"
	"github.com/Veraticus/taxflow/internal/config"
	"github.com/Veraticus/taxflow/internal/model"
	"github.com/Veraticus/taxflow/internal/storage"
)

func testSettings(t *testing.T) config.Settings {
	t.Helper()
	return config.Settings{
		Jurisdiction:  model.JurisdictionUSFederal,
		FilingStatus:  model.StatusSingle,
		Year:          2024,
		InflationRate: 0.025,
		DatabasePath:  filepath.Join(t.TempDir(), "schedules.db"),
	}
}

func newInputCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addInputFlags(cmd)
	addOutputFlag(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestReadInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    model.TaxInput
		wantErr bool
	}{
		{
			name: "defaults from settings",
			args: []string{"--income", "50000"},
			want: model.TaxInput{
				Jurisdiction:         model.JurisdictionUSFederal,
				FilingStatus:         model.StatusSingle,
				Year:                 2024,
				GrossIncome:          50000,
				UseStandardDeduction: true,
			},
		},
		{
			name: "flags override settings",
			args: []string{"-i", "90000", "-s", "mfj", "-y", "2023", "-j", "uk", "--credits", "500"},
			want: model.TaxInput{
				Jurisdiction:         model.JurisdictionUK,
				FilingStatus:         model.StatusMarriedJoint,
				Year:                 2023,
				GrossIncome:          90000,
				Credits:              500,
				UseStandardDeduction: true,
			},
		},
		{
			name: "itemized flag switches method",
			args: []string{"-i", "90000", "--itemized", "20000"},
			want: model.TaxInput{
				Jurisdiction:      model.JurisdictionUSFederal,
				FilingStatus:      model.StatusSingle,
				Year:              2024,
				GrossIncome:       90000,
				ItemizedDeduction: 20000,
			},
		},
		{
			name: "negative amounts clamp to zero",
			args: []string{"--income=-5", "--credits=-1"},
			want: model.TaxInput{
				Jurisdiction:         model.JurisdictionUSFederal,
				FilingStatus:         model.StatusSingle,
				Year:                 2024,
				UseStandardDeduction: true,
			},
		},
		{
			name: "non-finite amounts become zero",
			args: []string{"--income=NaN", "--credits=+Inf", "--itemized=-Inf"},
			want: model.TaxInput{
				Jurisdiction: model.JurisdictionUSFederal,
				FilingStatus: model.StatusSingle,
				Year:         2024,
			},
		},
		{name: "unknown status", args: []string{"-s", "widowed"}, wantErr: true},
		{name: "zero year", args: []string{"-y", "0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newInputCommand(t, tt.args...)
			got, err := readInput(cmd, testSettings(t))
			if tt.wantErr {
				require.Error(t, err)
				var userErr *common.UserError
				assert.ErrorAs(t, err, &userErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadOutput(t *testing.T) {
	out, err := readOutput(newInputCommand(t))
	require.NoError(t, err)
	assert.Equal(t, outputText, out)

	out, err = readOutput(newInputCommand(t, "-o", "json"))
	require.NoError(t, err)
	assert.Equal(t, outputJSON, out)

	_, err = readOutput(newInputCommand(t, "-o", "xml"))
	assert.Error(t, err)
}

func TestLoadCatalog_MergesStoredSchedules(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t)

	// No database yet: built-in tables only.
	catalog, err := loadCatalog(ctx, settings)
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024}, catalog.Years(model.JurisdictionUSFederal))
	assert.NoFileExists(t, settings.DatabasePath)

	store, err := initStorage(ctx, settings.DatabasePath)
	require.NoError(t, err)

	upper := 10000.0
	table, err := model.NewBracketTable(
		model.TableKey{Jurisdiction: "testland", Status: model.StatusSingle, Year: 2025},
		[]float64{0.1, 0.2},
		[]*float64{&upper, nil},
	)
	require.NoError(t, err)
	require.NoError(t, store.SaveSchedule(ctx, model.Schedule{
		Jurisdiction:      "testland",
		Year:              2025,
		Brackets:          map[model.FilingStatus]model.BracketTable{model.StatusSingle: table},
		StandardDeduction: map[model.FilingStatus]float64{model.StatusSingle: 1000},
	}, storage.ScheduleMeta{Name: "Testland", Currency: "TST"}))
	require.NoError(t, store.Close())

	catalog, err = loadCatalog(ctx, settings)
	require.NoError(t, err)
	assert.Equal(t, []int{2025}, catalog.Years("testland"))
	assert.Equal(t, "TST", currencyFor(catalog, "testland"))
	assert.Equal(t, "USD", currencyFor(catalog, model.JurisdictionUSFederal))

	result, err := newCalculator(settings, catalog).Calculate(model.TaxInput{
		Jurisdiction:         "testland",
		FilingStatus:         model.StatusSingle,
		Year:                 2025,
		GrossIncome:          21000,
		UseStandardDeduction: true,
	})
	require.NoError(t, err)
	// 20,000 taxable: 10,000 at 10% + 10,000 at 20%.
	assert.Equal(t, 3000.0, result.TaxOwed)
}

func TestTableError(t *testing.T) {
	settings := testSettings(t)
	catalog, err := loadCatalog(context.Background(), settings)
	require.NoError(t, err)

	err = tableError(common.ErrTableNotFound, catalog, "mars")
	assert.Contains(t, common.UserMessage(err), `"mars"`)
	assert.ErrorIs(t, err, common.ErrTableNotFound)

	err = tableError(common.ErrTableNotFound, catalog, model.JurisdictionUSFederal)
	assert.Contains(t, common.UserMessage(err), "2023 onwards")

	other := assert.AnError
	assert.Equal(t, other, tableError(other, catalog, model.JurisdictionUSFederal))
}

func TestFormatYears(t *testing.T) {
	assert.Equal(t, "", formatYears(nil))
	assert.Equal(t, "2024", formatYears([]int{2024}))
	assert.Equal(t, "2020-2022, 2024", formatYears([]int{2020, 2021, 2022, 2024}))
}

const importFile = `
jurisdiction: testland
name: Testland
currency: TST
years:
  - year: 2025
    standard_deduction:
      single: 1000
    brackets:
      single:
        - {rate: 0.1, upto: 10000}
        - {rate: 0.2}
`

const builtinFile = `
jurisdiction: us-federal
years:
  - year: 2024
    brackets:
      single:
        - {rate: 0.1}
`

func TestRunTablesImport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "schedules.db")
	viper.Set("database.path", dbPath)
	t.Cleanup(func() { viper.Set("database.path", config.DefaultDatabasePath) })

	run := func(t *testing.T, contents string) string {
		t.Helper()
		path := filepath.Join(dir, "import.yaml")
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

		var out bytes.Buffer
		cmd := tablesImportCmd()
		cmd.SetOut(&out)
		cmd.SetContext(context.Background())
		require.NoError(t, runTablesImport(cmd, []string{path}))
		return out.String()
	}

	out := run(t, importFile)
	assert.Contains(t, out, "Importing 1 schedules")
	assert.Contains(t, out, "Imported 1 of 1")

	out = run(t, importFile)
	assert.Contains(t, out, "testland 2025 already imported; skipped")
	assert.Contains(t, out, "Imported 0 of 1")

	out = run(t, builtinFile)
	assert.Contains(t, out, "us-federal 2024 is built in; skipped")

	store, err := initStorage(context.Background(), dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	records, err := store.ListSchedules(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "import.yaml", records[0].Source)
}

func TestRunSweep_RejectsNaNRange(t *testing.T) {
	for _, args := range [][]string{{"--from=NaN"}, {"--to=NaN"}} {
		cmd := sweepCmd()
		cmd.SetContext(context.Background())
		require.NoError(t, cmd.ParseFlags(args))

		err := runSweep(cmd, nil)
		require.Error(t, err, "args %v", args)
		assert.ErrorIs(t, err, common.ErrInvalidSweep)
	}
}
