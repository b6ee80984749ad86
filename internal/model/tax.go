package model

import (
	"fmt"
	"math"
	"sort"
)

// TaxInput is one calculation request. It is created fresh for every
// recalculation.
type TaxInput struct {
	Jurisdiction         Jurisdiction `json:"jurisdiction"`
	FilingStatus         FilingStatus `json:"filing_status"`
	Year                 int          `json:"year"`
	GrossIncome          float64      `json:"gross_income"`
	ItemizedDeduction    float64      `json:"itemized_deduction"`
	Credits              float64      `json:"credits"`
	UseStandardDeduction bool         `json:"use_standard_deduction"`
}

// Normalized clamps negative amounts to zero.
func (in TaxInput) Normalized() TaxInput {
	in.GrossIncome = nonNegative(in.GrossIncome)
	in.ItemizedDeduction = nonNegative(in.ItemizedDeduction)
	in.Credits = nonNegative(in.Credits)
	return in
}

// BracketContribution is the share of income taxed within one bracket.
type BracketContribution struct {
	Rate        float64 `json:"rate"`
	LowerBound  float64 `json:"lower_bound"`
	UpperBound  float64 `json:"-"`
	AmountTaxed float64 `json:"amount_taxed"`
	Tax         float64 `json:"tax"`
}

// TaxResult is the derived outcome of a TaxInput. Results are replaced
// wholesale on every recalculation, never patched.
type TaxResult struct {
	Input              TaxInput              `json:"input"`
	Contributions      []BracketContribution `json:"contributions"`
	Deduction          float64               `json:"deduction"`
	TaxableIncome      float64               `json:"taxable_income"`
	GrossTax           float64               `json:"gross_tax"`
	CreditsApplied     float64               `json:"credits_applied"`
	TaxOwed            float64               `json:"tax_owed"`
	EffectiveRate      float64               `json:"effective_rate"`
	MarginalRate       float64               `json:"marginal_rate"`
	BracketYear        int                   `json:"bracket_year"`
	DeductionBaseYear  int                   `json:"deduction_base_year"`
	DeductionProjected bool                  `json:"deduction_projected"`
}

// Schedule holds every bracket table and standard deduction for one
// jurisdiction and year.
type Schedule struct {
	Brackets          map[FilingStatus]BracketTable `json:"brackets"`
	StandardDeduction map[FilingStatus]float64      `json:"standard_deduction"`
	Jurisdiction      Jurisdiction                  `json:"jurisdiction"`
	Year              int                           `json:"year"`
}

// Statuses returns the filing statuses covered by the schedule in display order.
func (s Schedule) Statuses() []FilingStatus {
	statuses := make([]FilingStatus, 0, len(s.Brackets))
	for _, status := range FilingStatuses {
		if _, ok := s.Brackets[status]; ok {
			statuses = append(statuses, status)
		}
	}

	var extra []FilingStatus
	for status := range s.Brackets {
		if !knownStatus(status) {
			extra = append(extra, status)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(statuses, extra...)
}

// Validate checks every table in the schedule.
func (s Schedule) Validate() error {
	if len(s.Brackets) == 0 {
		return fmt.Errorf("%w %s/%d: schedule has no bracket tables", ErrInvalidTable, s.Jurisdiction, s.Year)
	}
	for _, status := range s.Statuses() {
		table := s.Brackets[status]
		want := TableKey{Jurisdiction: s.Jurisdiction, Status: status, Year: s.Year}
		if table.Key != want {
			return fmt.Errorf("%w: table keyed %s stored under %s", ErrInvalidTable, table.Key, want)
		}
		if err := table.Validate(); err != nil {
			return err
		}
	}
	for status, amount := range s.StandardDeduction {
		if amount < 0 {
			return fmt.Errorf("%w %s/%d: negative standard deduction for %s",
				ErrInvalidTable, s.Jurisdiction, s.Year, status)
		}
	}
	return nil
}

func knownStatus(s FilingStatus) bool {
	for _, status := range FilingStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// nonNegative maps negative and non-finite amounts to zero.
func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
