package engine

import (
	"github.com/Veraticus/taxflow/internal/model"
)

// TableSource defines the contract for looking up bracket tables and
// standard deductions.
type TableSource interface {
	Table(key model.TableKey) (model.BracketTable, error)
	StandardDeductions(j model.Jurisdiction, status model.FilingStatus) map[int]float64
}
