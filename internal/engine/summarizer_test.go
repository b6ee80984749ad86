package engine

import (
	"testing"

	"github.com/Veraticus/taxflow/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	twoBrackets := []model.BracketContribution{
		{Rate: 0.10, AmountTaxed: 11000, Tax: 1100},
		{Rate: 0.12, AmountTaxed: 25150, Tax: 3018},
	}

	tests := []struct {
		name          string
		contributions []model.BracketContribution
		taxOwed       float64
		gross         float64
		credits       float64
		want          Summary
	}{
		{
			name:          "no credits",
			taxOwed:       4118,
			gross:         50000,
			contributions: twoBrackets,
			want:          Summary{TaxOwed: 4118, EffectiveRate: 8.236, MarginalRate: 12},
		},
		{
			name:          "credits reduce tax",
			taxOwed:       4118,
			gross:         50000,
			credits:       2000,
			contributions: twoBrackets,
			want:          Summary{TaxOwed: 2118, CreditsApplied: 2000, EffectiveRate: 4.236, MarginalRate: 12},
		},
		{
			name:          "credits exceed tax",
			taxOwed:       500,
			gross:         20000,
			credits:       800,
			contributions: twoBrackets[:1],
			want:          Summary{TaxOwed: 0, CreditsApplied: 500, EffectiveRate: 0, MarginalRate: 10},
		},
		{
			name:    "zero gross income",
			taxOwed: 0,
			gross:   0,
			want:    Summary{},
		},
		{
			name:          "negative credits ignored",
			taxOwed:       100,
			gross:         1000,
			credits:       -50,
			contributions: twoBrackets[:1],
			want:          Summary{TaxOwed: 100, EffectiveRate: 10, MarginalRate: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.taxOwed, tt.gross, tt.credits, tt.contributions)
			assert.InDelta(t, tt.want.TaxOwed, got.TaxOwed, 1e-9)
			assert.InDelta(t, tt.want.CreditsApplied, got.CreditsApplied, 1e-9)
			assert.InDelta(t, tt.want.EffectiveRate, got.EffectiveRate, 1e-9)
			assert.InDelta(t, tt.want.MarginalRate, got.MarginalRate, 1e-9)
		})
	}
}
