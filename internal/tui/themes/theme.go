// Package themes defines the color schemes for the interactive calculator.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	Value        lipgloss.Style
	Headline     lipgloss.Style
	Muted        lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
	BarFull      lipgloss.Style
	BarEmpty     lipgloss.Style
	RoundedBox   lipgloss.Style
	Primary      lipgloss.Color
	Border       lipgloss.Color
}

func build(primary, foreground, muted, border, warning, errColor lipgloss.Color) Theme {
	return Theme{
		Primary: primary,
		Border:  border,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(muted),
		Label: lipgloss.NewStyle().
			Foreground(foreground).
			Width(20),
		FocusedLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			Width(20),
		Value: lipgloss.NewStyle().
			Foreground(foreground),
		Headline: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Muted: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
		Warning: lipgloss.NewStyle().
			Foreground(warning).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		BarFull: lipgloss.NewStyle().
			Foreground(primary),
		BarEmpty: lipgloss.NewStyle().
			Foreground(border),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2),
	}
}

// Default is the default theme.
var Default = build(
	lipgloss.Color("#2ec4b6"),
	lipgloss.Color("#fafafa"),
	lipgloss.Color("#737373"),
	lipgloss.Color("#404040"),
	lipgloss.Color("#f59e0b"),
	lipgloss.Color("#ef4444"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(
	lipgloss.Color("#a6e3a1"),
	lipgloss.Color("#cdd6f4"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#f9e2af"),
	lipgloss.Color("#f38ba8"),
)

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
