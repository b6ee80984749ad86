package engine

import (
	"math"

	"github.com/Veraticus/taxflow/internal/model"
)

// Evaluation is the raw bracket walk before credits.
type Evaluation struct {
	Contributions []model.BracketContribution
	TaxOwed       float64
}

// Evaluate walks the table in ascending order, taxing the slice of income
// that falls inside each bracket at that bracket's rate.
func Evaluate(taxableIncome float64, table model.BracketTable) Evaluation {
	var eval Evaluation

	for _, b := range table.Brackets {
		if taxableIncome <= b.LowerBound {
			break
		}

		// math.Min handles the +Inf upper bound of the top bracket.
		amount := math.Min(taxableIncome, b.UpperBound) - b.LowerBound
		tax := amount * b.Rate
		eval.TaxOwed += tax

		if amount > 0 {
			eval.Contributions = append(eval.Contributions, model.BracketContribution{
				Rate:        b.Rate,
				LowerBound:  b.LowerBound,
				UpperBound:  b.UpperBound,
				AmountTaxed: amount,
				Tax:         tax,
			})
		}
	}

	return eval
}

// Breakpoint is the income at which a new marginal rate starts.
type Breakpoint struct {
	Threshold float64
	Rate      float64
	// TaxBelow is the tax owed on exactly Threshold of taxable income.
	TaxBelow float64
}

// Breakpoints lists where each bracket starts along with the cumulative tax
// at that point.
func Breakpoints(table model.BracketTable) []Breakpoint {
	points := make([]Breakpoint, 0, len(table.Brackets))
	cumulative := 0.0
	for _, b := range table.Brackets {
		points = append(points, Breakpoint{
			Threshold: b.LowerBound,
			Rate:      b.Rate,
			TaxBelow:  cumulative,
		})
		if !b.Unbounded() {
			cumulative += (b.UpperBound - b.LowerBound) * b.Rate
		}
	}
	return points
}
