package engine

import (
	"math"
	"sort"

	"github.com/Veraticus/taxflow/internal/model"
)

// DefaultInflationRate is the annual growth applied to the latest tabulated
// standard deduction when projecting a year past the table. It is a product
// policy constant, not an economic forecast.
const DefaultInflationRate = 0.025

// Resolution is the deduction subtracted from gross income.
type Resolution struct {
	Amount float64
	// BaseYear is the tabulated year the amount came from; 0 for itemized.
	BaseYear  int
	Projected bool
}

// DeductionResolver picks the standard or itemized deduction for a return.
type DeductionResolver struct {
	source        TableSource
	inflationRate float64
}

// NewDeductionResolver creates a resolver projecting with the given inflation rate.
func NewDeductionResolver(source TableSource, inflationRate float64) *DeductionResolver {
	return &DeductionResolver{
		source:        source,
		inflationRate: inflationRate,
	}
}

// InflationRate returns the rate used for projections.
func (r *DeductionResolver) InflationRate() float64 {
	return r.inflationRate
}

// Resolve returns the deduction for the input. It never fails: negative
// itemized amounts clamp to zero and a status with no tabulated standard
// deduction resolves to zero.
func (r *DeductionResolver) Resolve(in model.TaxInput) Resolution {
	if !in.UseStandardDeduction {
		return Resolution{Amount: math.Max(0, in.ItemizedDeduction)}
	}

	table := r.source.StandardDeductions(in.Jurisdiction, in.FilingStatus)
	return StandardDeduction(table, in.Year, r.inflationRate)
}

// StandardDeduction looks up year in a year-indexed deduction table. Years
// after the latest entry are projected forward with compound inflation and
// rounded to a whole currency unit. Years before the first entry use the
// first entry.
func StandardDeduction(table map[int]float64, year int, inflationRate float64) Resolution {
	if len(table) == 0 {
		return Resolution{}
	}
	if amount, ok := table[year]; ok {
		return Resolution{Amount: amount, BaseYear: year}
	}

	years := make([]int, 0, len(table))
	for y := range table {
		years = append(years, y)
	}
	sort.Ints(years)

	latest := years[len(years)-1]
	if year > latest {
		return Resolution{
			Amount:    ProjectDeduction(table[latest], year-latest, inflationRate),
			BaseYear:  latest,
			Projected: true,
		}
	}

	// Gaps inside the table use the closest earlier year.
	base := years[0]
	for _, y := range years {
		if y > year {
			break
		}
		base = y
	}
	return Resolution{Amount: table[base], BaseYear: base}
}

// ProjectDeduction grows amount by rate for the given number of years and
// rounds to the nearest whole unit.
func ProjectDeduction(amount float64, years int, rate float64) float64 {
	return math.Round(amount * math.Pow(1+rate, float64(years)))
}
