// Package engine implements the progressive tax calculation pipeline:
// deduction, bracket walk, then credits and rates.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Veraticus/taxflow/internal/model"
)

// Calculator turns a TaxInput into a TaxResult. It keeps no state between
// calls and is safe for concurrent use.
type Calculator struct {
	source     TableSource
	deductions *DeductionResolver
}

// Config holds configuration options for the calculator.
type Config struct {
	InflationRate float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		InflationRate: DefaultInflationRate,
	}
}

// New creates a calculator over the given tables with the default configuration.
func New(source TableSource) *Calculator {
	return NewWithConfig(source, DefaultConfig())
}

// NewWithConfig creates a calculator with custom configuration.
func NewWithConfig(source TableSource, config Config) *Calculator {
	return &Calculator{
		source:     source,
		deductions: NewDeductionResolver(source, config.InflationRate),
	}
}

// Calculate runs the full pipeline. The only failure is a missing bracket
// table; the arithmetic itself is total.
func (c *Calculator) Calculate(in model.TaxInput) (model.TaxResult, error) {
	in = in.Normalized()

	key := model.TableKey{Jurisdiction: in.Jurisdiction, Status: in.FilingStatus, Year: in.Year}
	table, err := c.source.Table(key)
	if err != nil {
		return model.TaxResult{}, fmt.Errorf("failed to find brackets for %s: %w", key, err)
	}

	deduction := c.deductions.Resolve(in)
	taxable := math.Max(0, in.GrossIncome-deduction.Amount)

	eval := Evaluate(taxable, table)
	summary := Summarize(eval.TaxOwed, in.GrossIncome, in.Credits, eval.Contributions)

	slog.Debug("Calculated tax",
		"key", key.String(),
		"bracket_year", table.Key.Year,
		"deduction", deduction.Amount,
		"projected", deduction.Projected,
		"taxable_income", taxable,
		"tax_owed", summary.TaxOwed)

	return model.TaxResult{
		Input:              in,
		Deduction:          deduction.Amount,
		DeductionBaseYear:  deduction.BaseYear,
		DeductionProjected: deduction.Projected,
		TaxableIncome:      taxable,
		GrossTax:           eval.TaxOwed,
		CreditsApplied:     summary.CreditsApplied,
		TaxOwed:            summary.TaxOwed,
		EffectiveRate:      summary.EffectiveRate,
		MarginalRate:       summary.MarginalRate,
		Contributions:      eval.Contributions,
		BracketYear:        table.Key.Year,
	}, nil
}

// DeductionMethod names the way a return reduces gross income.
type DeductionMethod string

const (
	// DeductionStandard uses the tabulated standard deduction.
	DeductionStandard DeductionMethod = "standard"
	// DeductionItemized uses the supplied itemized total.
	DeductionItemized DeductionMethod = "itemized"
)

// DeductionComparison reports the outcome of both deduction methods.
type DeductionComparison struct {
	Recommended DeductionMethod `json:"recommended"`
	Standard    model.TaxResult `json:"standard"`
	Itemized    model.TaxResult `json:"itemized"`
	// Savings is how much less tax the recommended method owes.
	Savings float64 `json:"savings"`
}

// Compare evaluates the input under both deduction methods. Ties recommend
// the standard deduction.
func (c *Calculator) Compare(in model.TaxInput) (DeductionComparison, error) {
	standardIn := in
	standardIn.UseStandardDeduction = true
	standard, err := c.Calculate(standardIn)
	if err != nil {
		return DeductionComparison{}, err
	}

	itemizedIn := in
	itemizedIn.UseStandardDeduction = false
	itemized, err := c.Calculate(itemizedIn)
	if err != nil {
		return DeductionComparison{}, err
	}

	cmp := DeductionComparison{
		Standard:    standard,
		Itemized:    itemized,
		Recommended: DeductionStandard,
		Savings:     itemized.TaxOwed - standard.TaxOwed,
	}
	if itemized.TaxOwed < standard.TaxOwed {
		cmp.Recommended = DeductionItemized
		cmp.Savings = standard.TaxOwed - itemized.TaxOwed
	}
	return cmp, nil
}

// InflationRate returns the projection rate in use.
func (c *Calculator) InflationRate() float64 {
	return c.deductions.InflationRate()
}
