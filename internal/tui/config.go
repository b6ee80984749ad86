package tui

import (
	"github.com/Veraticus/taxflow/internal/engine"
	"github.com/Veraticus/taxflow/internal/model"
	"github.com/Veraticus/taxflow/internal/tui/themes"
)

// Config holds the starting state of the interactive calculator.
type Config struct {
	Theme         themes.Theme
	Jurisdiction  model.Jurisdiction
	Status        model.FilingStatus
	Currency      string
	Year          int
	InflationRate float64
	Itemize       bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme:         themes.Default,
		Jurisdiction:  model.JurisdictionUSFederal,
		Status:        model.StatusSingle,
		Currency:      "USD",
		Year:          2024,
		InflationRate: engine.DefaultInflationRate,
	}
}
