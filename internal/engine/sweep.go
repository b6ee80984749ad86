package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/Veraticus/taxflow/internal/common"
	"github.com/Veraticus/taxflow/internal/model"
)

// MaxSweepPoints bounds the size of a single sweep.
const MaxSweepPoints = 1_000_000

// SweepOptions describes an income range to tabulate.
type SweepOptions struct {
	// OnStep is called after each point with the number done and the total.
	OnStep func(done, total int)
	From   float64
	To     float64
	Step   float64
}

// SweepPoint is one row of a sweep.
type SweepPoint struct {
	GrossIncome   float64 `json:"gross_income"`
	TaxableIncome float64 `json:"taxable_income"`
	TaxOwed       float64 `json:"tax_owed"`
	EffectiveRate float64 `json:"effective_rate"`
	MarginalRate  float64 `json:"marginal_rate"`
}

// Points returns how many incomes the options cover.
func (o SweepOptions) Points() (int, error) {
	if o.Step <= 0 || math.IsNaN(o.Step) || math.IsInf(o.Step, 0) {
		return 0, fmt.Errorf("%w: step must be positive", common.ErrInvalidSweep)
	}
	if math.IsNaN(o.From) || math.IsNaN(o.To) || o.From < 0 || o.To < o.From || math.IsInf(o.To, 0) {
		return 0, fmt.Errorf("%w: range %v to %v", common.ErrInvalidSweep, o.From, o.To)
	}

	n := math.Floor((o.To-o.From)/o.Step+1e-9) + 1
	if n > MaxSweepPoints {
		return 0, fmt.Errorf("%w: %v points exceeds the limit of %d", common.ErrInvalidSweep, n, MaxSweepPoints)
	}
	return int(n), nil
}

// Sweep evaluates in at every gross income in the range, holding the other
// fields fixed.
func (c *Calculator) Sweep(ctx context.Context, in model.TaxInput, opts SweepOptions) ([]SweepPoint, error) {
	total, err := opts.Points()
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return points, err
		}

		in.GrossIncome = opts.From + float64(i)*opts.Step
		result, err := c.Calculate(in)
		if err != nil {
			return points, err
		}

		points = append(points, SweepPoint{
			GrossIncome:   result.Input.GrossIncome,
			TaxableIncome: result.TaxableIncome,
			TaxOwed:       result.TaxOwed,
			EffectiveRate: result.EffectiveRate,
			MarginalRate:  result.MarginalRate,
		})

		if opts.OnStep != nil {
			opts.OnStep(i+1, total)
		}
	}

	return points, nil
}

// CheckMonotonic returns the index of the first point whose tax is lower
// than the point before it, or -1 when tax never decreases.
func CheckMonotonic(points []SweepPoint) int {
	for i := 1; i < len(points); i++ {
		if points[i].TaxOwed < points[i-1].TaxOwed {
			return i
		}
	}
	return -1
}
