package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/taxflow/internal/cli"
	"github.com/Veraticus/taxflow/internal/model"
)

const barWidth = 16

// View implements tea.Model.
func (m Model) View() string {
	t := m.config.Theme

	var b strings.Builder
	b.WriteString(t.Title.Render(cli.LedgerIcon + " Tax calculator"))
	b.WriteString("\n")
	b.WriteString(t.Subtitle.Render(fmt.Sprintf("%s · %s", m.config.Jurisdiction, m.status.Label())))
	b.WriteString("\n\n")

	b.WriteString(m.renderInputs())
	b.WriteString("\n")
	b.WriteString(m.renderResult())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keymap))

	return t.RoundedBox.Render(b.String())
}

func (m Model) renderInputs() string {
	t := m.config.Theme

	lines := make([]string, 0, fieldCount+1)
	for i, in := range m.inputs {
		f := field(i)
		label := t.Label
		if f == m.focus {
			label = t.FocusedLabel
		}
		line := label.Render(fieldLabels[f]) + in.View()
		if f == fieldItemized && !m.itemize {
			line += " " + t.Muted.Render("(unused)")
		}
		lines = append(lines, line)
	}

	method := "standard"
	if m.itemize {
		method = "itemized"
	}
	lines = append(lines, t.Label.Render("Deduction")+t.Value.Render(method))
	return strings.Join(lines, "\n")
}

func (m Model) renderResult() string {
	t := m.config.Theme
	if m.err != nil {
		return t.Error.Render(cli.ErrorIcon + " " + m.err.Error())
	}

	r := m.result
	cur := m.config.Currency

	rows := []string{
		t.Label.Render("Deduction") + t.Value.Render(cli.FormatCurrency(r.Deduction, cur)+" ("+cli.DescribeDeduction(r, m.config.InflationRate)+")"),
		t.Label.Render("Taxable income") + t.Value.Render(cli.FormatCurrency(r.TaxableIncome, cur)),
		t.Label.Render("Tax owed") + t.Headline.Render(cli.FormatCurrency(r.TaxOwed, cur)),
		t.Label.Render("Effective rate") + t.Value.Render(cli.FormatPercent(r.EffectiveRate)),
		t.Label.Render("Marginal rate") + t.Value.Render(cli.FormatPercent(r.MarginalRate)),
	}
	if r.BracketYear != 0 && r.BracketYear != r.Input.Year {
		rows = append(rows, t.Warning.Render(fmt.Sprintf("%s using %d brackets", cli.WarningIcon, r.BracketYear)))
	}

	if len(r.Contributions) > 0 {
		rows = append(rows, "")
		for _, c := range r.Contributions {
			rows = append(rows, m.renderContribution(c, r.TaxableIncome))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderContribution(c model.BracketContribution, taxable float64) string {
	t := m.config.Theme

	share := 0.0
	if taxable > 0 {
		share = c.AmountTaxed / taxable
	}
	bar := cli.StyledBar(share, barWidth, t.BarFull, t.BarEmpty)

	return fmt.Sprintf("%6s %s %s", cli.FormatRate(c.Rate), bar,
		t.Value.Render(cli.FormatCurrency(c.Tax, m.config.Currency)))
}
