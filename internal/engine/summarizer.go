package engine

import (
	"math"

	"github.com/Veraticus/taxflow/internal/model"
)

// Summary holds the display figures derived from an Evaluation.
type Summary struct {
	TaxOwed        float64
	CreditsApplied float64
	// EffectiveRate and MarginalRate are percentages.
	EffectiveRate float64
	MarginalRate  float64
}

// Summarize applies non-refundable credits and derives the effective and
// marginal rates.
func Summarize(taxOwed, grossIncome, credits float64, contributions []model.BracketContribution) Summary {
	credits = math.Max(0, credits)
	final := math.Max(0, taxOwed-credits)

	s := Summary{
		TaxOwed:        final,
		CreditsApplied: taxOwed - final,
	}
	if grossIncome > 0 {
		s.EffectiveRate = final / grossIncome * 100
	}
	if n := len(contributions); n > 0 {
		s.MarginalRate = contributions[n-1].Rate * 100
	}
	return s
}
