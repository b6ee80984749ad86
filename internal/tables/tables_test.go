package tables

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Veraticus/taxflow/internal/common"
	"github.com/Veraticus/taxflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = `
jurisdiction: testland
name: Testland
currency: TST
years:
  - year: 2021
    standard_deduction:
      single: 1000
    brackets:
      single:
        - {rate: 0.1, upto: 10000}
        - {rate: 0.3}
  - year: 2020
    standard_deduction:
      single: 900
    brackets:
      single:
        - {rate: 0.1, upto: 9000}
        - {rate: 0.3}
`

func TestParse(t *testing.T) {
	f, schedules, err := Parse(strings.NewReader(sampleFile))
	require.NoError(t, err)

	assert.Equal(t, model.Jurisdiction("testland"), f.Jurisdiction)
	assert.Equal(t, "TST", f.Currency)
	require.Len(t, schedules, 2)
	assert.Equal(t, 2020, schedules[0].Year, "schedules sorted by year")
	assert.Equal(t, 2021, schedules[1].Year)

	table := schedules[1].Brackets[model.StatusSingle]
	assert.Equal(t, model.TableKey{Jurisdiction: "testland", Status: model.StatusSingle, Year: 2021}, table.Key)
	require.Len(t, table.Brackets, 2)
	assert.Equal(t, 10000.0, table.Brackets[1].LowerBound)
	assert.True(t, table.Brackets[1].Unbounded())
	assert.Equal(t, 1000.0, schedules[1].StandardDeduction[model.StatusSingle])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "empty", input: "", errMsg: "empty schedule file"},
		{name: "missing jurisdiction", input: "years: []", errMsg: "jurisdiction is required"},
		{name: "no years", input: "jurisdiction: x", errMsg: "no years defined"},
		{
			name: "bounded top bracket",
			input: `
jurisdiction: x
years:
  - year: 2020
    brackets:
      single:
        - {rate: 0.1, upto: 100}
`,
			errMsg: "last bracket must be unbounded",
		},
		{
			name: "regressive rates",
			input: `
jurisdiction: x
years:
  - year: 2020
    brackets:
      single:
        - {rate: 0.3, upto: 100}
        - {rate: 0.1}
`,
			errMsg: "lower than previous rate",
		},
		{
			name: "duplicate year",
			input: `
jurisdiction: x
years:
  - year: 2020
    brackets:
      single: [{rate: 0.1}]
  - year: 2020
    brackets:
      single: [{rate: 0.1}]
`,
			errMsg: "year 2020 defined twice",
		},
		{
			name: "unknown field",
			input: `
jurisdiction: x
years:
  - year: 2020
    brakets: {}
`,
			errMsg: "failed to decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	_, schedules, err := Parse(strings.NewReader(sampleFile))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "Testland", "TST", schedules))

	_, again, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, schedules, again)
}

func TestEmbedded(t *testing.T) {
	catalog, err := Embedded()
	require.NoError(t, err)

	infos := catalog.Jurisdictions()
	require.Len(t, infos, 2)
	assert.Equal(t, model.JurisdictionUK, infos[0].Jurisdiction)
	assert.Equal(t, model.JurisdictionUSFederal, infos[1].Jurisdiction)
	assert.Equal(t, "USD", infos[1].Currency)

	assert.Equal(t, []int{2023, 2024}, catalog.Years(model.JurisdictionUSFederal))

	for _, s := range catalog.Schedules(model.JurisdictionUSFederal) {
		assert.Equal(t, model.FilingStatuses, s.Statuses(), "year %d covers every status", s.Year)
	}

	deductions := catalog.StandardDeductions(model.JurisdictionUSFederal, model.StatusSingle)
	assert.Equal(t, map[int]float64{2023: 13850, 2024: 14600}, deductions)
}

func TestCatalog_Table(t *testing.T) {
	catalog := NewCatalog()
	_, schedules, err := Parse(strings.NewReader(sampleFile))
	require.NoError(t, err)
	for _, s := range schedules {
		require.NoError(t, catalog.Add(s))
	}

	tests := []struct {
		name     string
		key      model.TableKey
		wantYear int
		wantErr  bool
	}{
		{name: "exact year", key: model.TableKey{Jurisdiction: "testland", Status: model.StatusSingle, Year: 2020}, wantYear: 2020},
		{name: "later year falls back to latest", key: model.TableKey{Jurisdiction: "testland", Status: model.StatusSingle, Year: 2030}, wantYear: 2021},
		{name: "year before first table", key: model.TableKey{Jurisdiction: "testland", Status: model.StatusSingle, Year: 2019}, wantErr: true},
		{name: "unknown status", key: model.TableKey{Jurisdiction: "testland", Status: model.StatusMarriedJoint, Year: 2021}, wantErr: true},
		{name: "unknown jurisdiction", key: model.TableKey{Jurisdiction: "mars", Status: model.StatusSingle, Year: 2021}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := catalog.Table(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrTableNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, table.Key.Year)
		})
	}
}

func TestCatalog_AddIsAppendOnly(t *testing.T) {
	catalog := NewCatalog()
	_, schedules, err := Parse(strings.NewReader(sampleFile))
	require.NoError(t, err)

	require.NoError(t, catalog.Add(schedules[0]))
	err = catalog.Add(schedules[0])
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	skipped, err := catalog.Merge(schedules)
	require.NoError(t, err)
	require.Len(t, skipped, 1)
	assert.Equal(t, 2020, skipped[0].Year)
	assert.Equal(t, []int{2020, 2021}, catalog.Years("testland"))

	info, ok := catalog.Info("testland")
	require.True(t, ok)
	assert.Equal(t, "testland", info.Name)
}
