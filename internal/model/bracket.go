package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTable indicates a bracket table that breaks the progressive schedule rules.
var ErrInvalidTable = errors.New("invalid bracket table")

// Bracket is one segment of a progressive schedule. Income in
// (LowerBound, UpperBound] is taxed at Rate.
type Bracket struct {
	Rate       float64 `json:"rate"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// Unbounded reports whether the bracket has no upper limit.
func (b Bracket) Unbounded() bool {
	return math.IsInf(b.UpperBound, 1)
}

// MarshalJSON writes an unbounded upper bound as null since JSON has no infinity.
func (b Bracket) MarshalJSON() ([]byte, error) {
	var upper *float64
	if !b.Unbounded() {
		upper = &b.UpperBound
	}
	return json.Marshal(struct {
		UpperBound *float64 `json:"upper_bound"`
		Rate       float64  `json:"rate"`
		LowerBound float64  `json:"lower_bound"`
	}{
		Rate:       b.Rate,
		LowerBound: b.LowerBound,
		UpperBound: upper,
	})
}

// TableKey identifies one bracket table.
type TableKey struct {
	Jurisdiction Jurisdiction `json:"jurisdiction"`
	Status       FilingStatus `json:"status"`
	Year         int          `json:"year"`
}

func (k TableKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Jurisdiction, k.Status, k.Year)
}

// BracketTable is an ordered, immutable progressive schedule.
type BracketTable struct {
	Brackets []Bracket `json:"brackets"`
	Key      TableKey  `json:"key"`
}

// Validate checks that the brackets are contiguous, ascending, progressive and
// end in an unbounded bracket.
func (t BracketTable) Validate() error {
	if len(t.Brackets) == 0 {
		return fmt.Errorf("%w %s: no brackets", ErrInvalidTable, t.Key)
	}

	for i, b := range t.Brackets {
		if b.Rate < 0 || b.Rate > 1 || math.IsNaN(b.Rate) {
			return fmt.Errorf("%w %s: bracket %d rate %v outside [0,1]", ErrInvalidTable, t.Key, i, b.Rate)
		}
		if b.UpperBound <= b.LowerBound {
			return fmt.Errorf("%w %s: bracket %d upper bound %v not above lower bound %v",
				ErrInvalidTable, t.Key, i, b.UpperBound, b.LowerBound)
		}

		last := i == len(t.Brackets)-1
		if last && !b.Unbounded() {
			return fmt.Errorf("%w %s: last bracket must be unbounded", ErrInvalidTable, t.Key)
		}
		if !last && b.Unbounded() {
			return fmt.Errorf("%w %s: bracket %d is unbounded but is not last", ErrInvalidTable, t.Key, i)
		}

		if i == 0 {
			if b.LowerBound != 0 {
				return fmt.Errorf("%w %s: first bracket must start at 0", ErrInvalidTable, t.Key)
			}
			continue
		}

		prev := t.Brackets[i-1]
		if b.LowerBound != prev.UpperBound {
			return fmt.Errorf("%w %s: bracket %d starts at %v but bracket %d ends at %v",
				ErrInvalidTable, t.Key, i, b.LowerBound, i-1, prev.UpperBound)
		}
		if b.Rate < prev.Rate {
			return fmt.Errorf("%w %s: bracket %d rate %v lower than previous rate %v",
				ErrInvalidTable, t.Key, i, b.Rate, prev.Rate)
		}
	}

	return nil
}

// TopRate returns the rate of the unbounded bracket.
func (t BracketTable) TopRate() float64 {
	if len(t.Brackets) == 0 {
		return 0
	}
	return t.Brackets[len(t.Brackets)-1].Rate
}

// NewBracketTable builds a table from upper bounds and rates. Each bracket
// starts where the previous one ended; a nil upper bound marks the unbounded
// bracket.
func NewBracketTable(key TableKey, rates []float64, uppers []*float64) (BracketTable, error) {
	if len(rates) != len(uppers) {
		return BracketTable{}, fmt.Errorf("%w %s: %d rates but %d upper bounds",
			ErrInvalidTable, key, len(rates), len(uppers))
	}

	brackets := make([]Bracket, 0, len(rates))
	lower := 0.0
	for i, rate := range rates {
		upper := math.Inf(1)
		if uppers[i] != nil {
			upper = *uppers[i]
		}
		brackets = append(brackets, Bracket{Rate: rate, LowerBound: lower, UpperBound: upper})
		lower = upper
	}

	table := BracketTable{Key: key, Brackets: brackets}
	if err := table.Validate(); err != nil {
		return BracketTable{}, err
	}
	return table, nil
}
