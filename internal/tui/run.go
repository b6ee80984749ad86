package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive calculator and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, calc Calculator, cfg Config) error {
	p := tea.NewProgram(New(calc, cfg), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive calculator failed: %w", err)
	}
	return nil
}
