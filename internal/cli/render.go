package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/taxflow/internal/engine"
	"github.com/Veraticus/taxflow/internal/model"
)

const barWidth = 20

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// DescribeInput is the one-line heading for a calculation.
func DescribeInput(in model.TaxInput) string {
	return fmt.Sprintf("%s · %s · %d", in.Jurisdiction, in.FilingStatus.Label(), in.Year)
}

// DescribeDeduction explains where the deduction amount came from.
func DescribeDeduction(r model.TaxResult, inflationRate float64) string {
	if !r.Input.UseStandardDeduction {
		return "itemized"
	}
	if r.DeductionProjected {
		return fmt.Sprintf("standard, projected from %d at %s/yr", r.DeductionBaseYear, FormatPercent(inflationRate*100))
	}
	if r.DeductionBaseYear != 0 && r.DeductionBaseYear != r.Input.Year {
		return fmt.Sprintf("standard, %d table", r.DeductionBaseYear)
	}
	return "standard"
}

// RenderResult writes a summary of r followed by its per-bracket breakdown.
func RenderResult(w io.Writer, r model.TaxResult, currency string, inflationRate float64) error {
	if _, err := fmt.Fprintln(w, FormatTitle("Tax summary ("+DescribeInput(r.Input)+")")); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Gross income", FormatCurrency(r.Input.GrossIncome, currency)},
		{"Deduction", FormatCurrency(r.Deduction, currency) + " (" + DescribeDeduction(r, inflationRate) + ")"},
		{"Taxable income", FormatCurrency(r.TaxableIncome, currency)},
		{"Tax before credits", FormatCurrency(r.GrossTax, currency)},
	}
	if r.CreditsApplied > 0 {
		rows = append(rows, [2]string{"Credits applied", FormatCurrency(r.CreditsApplied, currency)})
	}
	rows = append(rows,
		[2]string{"Tax owed", TaxOwedStyle.Render(FormatCurrency(r.TaxOwed, currency))},
		[2]string{"Effective rate", FormatPercent(r.EffectiveRate)},
		[2]string{"Marginal rate", FormatPercent(r.MarginalRate)},
	)
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush summary: %w", err)
	}

	if r.BracketYear != 0 && r.BracketYear != r.Input.Year {
		if _, err := fmt.Fprintln(w, FormatWarning(fmt.Sprintf("No %d brackets tabulated; using %d brackets", r.Input.Year, r.BracketYear))); err != nil {
			return fmt.Errorf("failed to write warning: %w", err)
		}
	}

	if len(r.Contributions) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No taxable income."))
		return err
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return RenderContributions(w, r.Contributions, r.TaxableIncome, currency)
}

// RenderContributions writes one row per bracket that taxed income.
func RenderContributions(w io.Writer, contributions []model.BracketContribution, taxable float64, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", "Rate", "Bracket", "Taxed", "Tax", "Share"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 5),
		strings.Repeat("─", 24),
		strings.Repeat("─", 12),
		strings.Repeat("─", 12),
		strings.Repeat("─", barWidth)); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for _, c := range contributions {
		share := 0.0
		if taxable > 0 {
			share = c.AmountTaxed / taxable
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			FormatRate(c.Rate),
			formatRange(c.LowerBound, c.UpperBound, currency),
			FormatCurrency(c.AmountTaxed, currency),
			FormatCurrency(c.Tax, currency),
			Bar(share, barWidth)); err != nil {
			return fmt.Errorf("failed to write bracket row: %w", err)
		}
	}
	return tw.Flush()
}

// RenderComparison writes the standard and itemized outcomes side by side.
func RenderComparison(w io.Writer, cmp engine.DeductionComparison, currency string) error {
	if _, err := fmt.Fprintln(w, FormatTitle("Standard vs itemized ("+DescribeInput(cmp.Standard.Input)+")")); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct {
		label    string
		standard string
		itemized string
	}{
		{"", "Standard", "Itemized"},
		{"Deduction", FormatCurrency(cmp.Standard.Deduction, currency), FormatCurrency(cmp.Itemized.Deduction, currency)},
		{"Taxable income", FormatCurrency(cmp.Standard.TaxableIncome, currency), FormatCurrency(cmp.Itemized.TaxableIncome, currency)},
		{"Tax owed", FormatCurrency(cmp.Standard.TaxOwed, currency), FormatCurrency(cmp.Itemized.TaxOwed, currency)},
		{"Effective rate", FormatPercent(cmp.Standard.EffectiveRate), FormatPercent(cmp.Itemized.EffectiveRate)},
		{"Marginal rate", FormatPercent(cmp.Standard.MarginalRate), FormatPercent(cmp.Itemized.MarginalRate)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", row.label, row.standard, row.itemized); err != nil {
			return fmt.Errorf("failed to write comparison row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush comparison: %w", err)
	}

	msg := fmt.Sprintf("Use the %s deduction", cmp.Recommended)
	if cmp.Savings > 0 {
		msg += " to save " + FormatCurrency(cmp.Savings, currency)
	}
	_, err := fmt.Fprintln(w, "\n"+FormatSuccess(msg))
	return err
}

// RenderBrackets writes a bracket table with the cumulative tax at each threshold.
func RenderBrackets(w io.Writer, table model.BracketTable, currency string) error {
	title := fmt.Sprintf("Brackets (%s · %s · %d)", table.Key.Jurisdiction, table.Key.Status.Label(), table.Key.Year)
	if _, err := fmt.Fprintln(w, FormatTitle(title)); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", "Rate", "Taxable income", "Tax at threshold"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, bp := range engine.Breakpoints(table) {
		b := table.Brackets[i]
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n",
			FormatRate(bp.Rate),
			formatRange(b.LowerBound, b.UpperBound, currency),
			FormatCurrency(bp.TaxBelow, currency)); err != nil {
			return fmt.Errorf("failed to write bracket row: %w", err)
		}
	}
	return tw.Flush()
}

// RenderSweep writes the rows of an income sweep.
func RenderSweep(w io.Writer, points []engine.SweepPoint, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", "Gross", "Taxable", "Tax owed", "Effective", "Marginal"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range points {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			FormatCurrency(p.GrossIncome, currency),
			FormatCurrency(p.TaxableIncome, currency),
			FormatCurrency(p.TaxOwed, currency),
			FormatPercent(p.EffectiveRate),
			FormatPercent(p.MarginalRate)); err != nil {
			return fmt.Errorf("failed to write sweep row: %w", err)
		}
	}
	return tw.Flush()
}

func formatRange(lower, upper float64, currency string) string {
	if math.IsInf(upper, 1) {
		return FormatWhole(lower, currency) + " and above"
	}
	return FormatWhole(lower, currency) + " – " + FormatWhole(upper, currency)
}
