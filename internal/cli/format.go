package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var currencySymbols = map[string]string{
	"USD": "$",
	"GBP": "£",
	"EUR": "€",
	"CAD": "$",
	"AUD": "$",
}

// CurrencySymbol returns the symbol for an ISO currency code, or the code
// followed by a space when no symbol is known.
func CurrencySymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	if code == "" {
		return "$"
	}
	return code + " "
}

// FormatCurrency renders an amount with grouped thousands and two decimals.
func FormatCurrency(amount float64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + CurrencySymbol(currency) + printer.Sprintf("%.2f", amount)
}

// FormatWhole renders an amount rounded to whole units, e.g. bracket bounds.
func FormatWhole(amount float64, currency string) string {
	return CurrencySymbol(currency) + printer.Sprintf("%d", int64(math.Round(amount)))
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(pct float64) string {
	return printer.Sprintf("%.2f%%", pct)
}

// FormatRate renders a bracket rate given as a fraction, dropping decimals
// when the rate is a whole percentage.
func FormatRate(rate float64) string {
	pct := rate * 100
	if math.Abs(pct-math.Round(pct)) < 1e-9 {
		return printer.Sprintf("%d%%", int64(math.Round(pct)))
	}
	return printer.Sprintf("%.2f%%", pct)
}

// Bar draws a horizontal bar of width cells filled in proportion to share.
func Bar(share float64, width int) string {
	return StyledBar(share, width, BarStyle, BarEmptyStyle)
}

// StyledBar is Bar with caller-supplied styles for the filled and empty cells.
func StyledBar(share float64, width int, full, empty lipgloss.Style) string {
	if width <= 0 {
		return ""
	}
	if share < 0 || math.IsNaN(share) {
		share = 0
	}
	if share > 1 {
		share = 1
	}

	filled := int(math.Round(share * float64(width)))
	return full.Render(strings.Repeat("█", filled)) +
		empty.Render(strings.Repeat("░", width-filled))
}
