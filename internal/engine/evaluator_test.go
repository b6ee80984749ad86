package engine

import (
	"math"
	"testing"

	"github.com/Veraticus/taxflow/internal/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 {
	return &f
}

// single2023 is the US federal single schedule for 2023.
func single2023(t *testing.T) model.BracketTable {
	t.Helper()
	table, err := model.NewBracketTable(
		model.TableKey{Jurisdiction: model.JurisdictionUSFederal, Status: model.StatusSingle, Year: 2023},
		[]float64{0.10, 0.12, 0.22, 0.24, 0.32, 0.35, 0.37},
		[]*float64{floatPtr(11000), floatPtr(44725), floatPtr(95375), floatPtr(182100), floatPtr(231250), floatPtr(578125), nil},
	)
	require.NoError(t, err)
	return table
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestEvaluate(t *testing.T) {
	table := single2023(t)

	tests := []struct {
		name    string
		want    []model.BracketContribution
		taxable float64
		wantTax float64
	}{
		{
			name:    "zero income",
			taxable: 0,
			wantTax: 0,
		},
		{
			name:    "inside first bracket",
			taxable: 5000,
			wantTax: 500,
			want: []model.BracketContribution{
				{Rate: 0.10, LowerBound: 0, UpperBound: 11000, AmountTaxed: 5000, Tax: 500},
			},
		},
		{
			name:    "exactly at first boundary stays in first bracket",
			taxable: 11000,
			wantTax: 1100,
			want: []model.BracketContribution{
				{Rate: 0.10, LowerBound: 0, UpperBound: 11000, AmountTaxed: 11000, Tax: 1100},
			},
		},
		{
			name:    "two brackets",
			taxable: 36150,
			wantTax: 4118,
			want: []model.BracketContribution{
				{Rate: 0.10, LowerBound: 0, UpperBound: 11000, AmountTaxed: 11000, Tax: 1100},
				{Rate: 0.12, LowerBound: 11000, UpperBound: 44725, AmountTaxed: 25150, Tax: 3018},
			},
		},
		{
			name:    "top bracket is unbounded",
			taxable: 1_000_000,
			wantTax: 1100 + 4047 + 11143 + 20814 + 15728 + 121406.25 + 156093.75,
			want: []model.BracketContribution{
				{Rate: 0.10, LowerBound: 0, UpperBound: 11000, AmountTaxed: 11000, Tax: 1100},
				{Rate: 0.12, LowerBound: 11000, UpperBound: 44725, AmountTaxed: 33725, Tax: 4047},
				{Rate: 0.22, LowerBound: 44725, UpperBound: 95375, AmountTaxed: 50650, Tax: 11143},
				{Rate: 0.24, LowerBound: 95375, UpperBound: 182100, AmountTaxed: 86725, Tax: 20814},
				{Rate: 0.32, LowerBound: 182100, UpperBound: 231250, AmountTaxed: 49150, Tax: 15728},
				{Rate: 0.35, LowerBound: 231250, UpperBound: 578125, AmountTaxed: 346875, Tax: 121406.25},
				{Rate: 0.37, LowerBound: 578125, UpperBound: math.Inf(1), AmountTaxed: 421875, Tax: 156093.75},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.taxable, table)
			assert.InDelta(t, tt.wantTax, got.TaxOwed, 1e-6)
			if diff := cmp.Diff(tt.want, got.Contributions, approx); diff != "" {
				t.Errorf("contributions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluate_ContinuousAtBoundaries(t *testing.T) {
	table := single2023(t)
	const eps = 0.01

	for _, b := range table.Brackets[1:] {
		below := Evaluate(b.LowerBound, table).TaxOwed
		above := Evaluate(b.LowerBound+eps, table).TaxOwed

		// Crossing a boundary only changes the rate on the next cent.
		assert.InDelta(t, eps*b.Rate, above-below, 1e-6, "jump at %v", b.LowerBound)
	}
}

func TestEvaluate_Monotonic(t *testing.T) {
	table := single2023(t)

	prev := 0.0
	for income := 0.0; income <= 800_000; income += 137.5 {
		tax := Evaluate(income, table).TaxOwed
		require.GreaterOrEqual(t, tax, prev, "tax decreased at %v", income)
		prev = tax
	}
}

func TestBreakpoints(t *testing.T) {
	table := single2023(t)
	points := Breakpoints(table)

	require.Len(t, points, len(table.Brackets))
	assert.Equal(t, Breakpoint{Threshold: 0, Rate: 0.10, TaxBelow: 0}, points[0])
	assert.Equal(t, 11000.0, points[1].Threshold)
	assert.InDelta(t, 1100, points[1].TaxBelow, 1e-9)
	assert.InDelta(t, 5147, points[2].TaxBelow, 1e-9)

	// Each breakpoint's cumulative tax agrees with the evaluator.
	for _, p := range points {
		assert.InDelta(t, Evaluate(p.Threshold, table).TaxOwed, p.TaxBelow, 1e-6)
	}
}
