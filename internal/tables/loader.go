// Package tables holds the versioned bracket and standard deduction schedules
// and the catalog used to look them up.
package tables

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"

	"github.com/Veraticus/taxflow/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// File is the on-disk layout of one jurisdiction's schedules.
type File struct {
	Jurisdiction model.Jurisdiction `yaml:"jurisdiction"`
	Name         string             `yaml:"name"`
	Currency     string             `yaml:"currency"`
	Years        []YearEntry        `yaml:"years"`
}

// YearEntry is one year of a File.
type YearEntry struct {
	StandardDeduction map[model.FilingStatus]float64     `yaml:"standard_deduction"`
	Brackets          map[model.FilingStatus][]RateEntry `yaml:"brackets"`
	Year              int                                `yaml:"year"`
}

// RateEntry is one bracket. UpTo is the inclusive upper bound; a missing
// value marks the unbounded top bracket.
type RateEntry struct {
	UpTo *float64 `yaml:"upto,omitempty"`
	Rate float64  `yaml:"rate"`
}

// Parse decodes and validates a schedule file.
func Parse(r io.Reader) (File, []model.Schedule, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil, fmt.Errorf("%w: empty schedule file", model.ErrInvalidTable)
		}
		return File{}, nil, fmt.Errorf("failed to decode schedule file: %w", err)
	}

	if f.Jurisdiction == "" {
		return File{}, nil, fmt.Errorf("%w: jurisdiction is required", model.ErrInvalidTable)
	}
	if len(f.Years) == 0 {
		return File{}, nil, fmt.Errorf("%w %s: no years defined", model.ErrInvalidTable, f.Jurisdiction)
	}

	schedules := make([]model.Schedule, 0, len(f.Years))
	seen := make(map[int]bool, len(f.Years))
	for _, entry := range f.Years {
		if seen[entry.Year] {
			return File{}, nil, fmt.Errorf("%w %s: year %d defined twice", model.ErrInvalidTable, f.Jurisdiction, entry.Year)
		}
		seen[entry.Year] = true

		schedule, err := entry.schedule(f.Jurisdiction)
		if err != nil {
			return File{}, nil, err
		}
		schedules = append(schedules, schedule)
	}

	sort.Slice(schedules, func(i, j int) bool { return schedules[i].Year < schedules[j].Year })
	return f, schedules, nil
}

func (e YearEntry) schedule(jurisdiction model.Jurisdiction) (model.Schedule, error) {
	if e.Year <= 0 {
		return model.Schedule{}, fmt.Errorf("%w %s: year must be positive", model.ErrInvalidTable, jurisdiction)
	}

	schedule := model.Schedule{
		Jurisdiction:      jurisdiction,
		Year:              e.Year,
		Brackets:          make(map[model.FilingStatus]model.BracketTable, len(e.Brackets)),
		StandardDeduction: make(map[model.FilingStatus]float64, len(e.StandardDeduction)),
	}

	for status, entries := range e.Brackets {
		rates := make([]float64, len(entries))
		uppers := make([]*float64, len(entries))
		for i, entry := range entries {
			rates[i] = entry.Rate
			uppers[i] = entry.UpTo
		}

		key := model.TableKey{Jurisdiction: jurisdiction, Status: status, Year: e.Year}
		table, err := model.NewBracketTable(key, rates, uppers)
		if err != nil {
			return model.Schedule{}, err
		}
		schedule.Brackets[status] = table
	}

	for status, amount := range e.StandardDeduction {
		schedule.StandardDeduction[status] = amount
	}

	if err := schedule.Validate(); err != nil {
		return model.Schedule{}, err
	}
	return schedule, nil
}

// Encode writes schedules back out in the file layout. All schedules must
// share a jurisdiction.
func Encode(w io.Writer, name, currency string, schedules []model.Schedule) error {
	if len(schedules) == 0 {
		return fmt.Errorf("%w: nothing to encode", model.ErrInvalidTable)
	}

	f := File{
		Jurisdiction: schedules[0].Jurisdiction,
		Name:         name,
		Currency:     currency,
	}
	for _, s := range schedules {
		if s.Jurisdiction != f.Jurisdiction {
			return fmt.Errorf("%w: mixed jurisdictions %s and %s", model.ErrInvalidTable, f.Jurisdiction, s.Jurisdiction)
		}

		entry := YearEntry{
			Year:              s.Year,
			StandardDeduction: s.StandardDeduction,
			Brackets:          make(map[model.FilingStatus][]RateEntry, len(s.Brackets)),
		}
		for status, table := range s.Brackets {
			rates := make([]RateEntry, len(table.Brackets))
			for i, b := range table.Brackets {
				rates[i] = RateEntry{Rate: b.Rate}
				if !b.Unbounded() {
					upper := b.UpperBound
					rates[i].UpTo = &upper
				}
			}
			entry.Brackets[status] = rates
		}
		f.Years = append(f.Years, entry)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode schedules: %w", err)
	}
	return enc.Close()
}

// Embedded loads the schedules compiled into the binary.
func Embedded() (*Catalog, error) {
	entries, err := fs.ReadDir(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded schedules: %w", err)
	}

	catalog := NewCatalog()
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}

		data, err := embedded.ReadFile(path.Join("data", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		f, schedules, err := Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}

		catalog.Describe(f.Jurisdiction, f.Name, f.Currency)
		for _, s := range schedules {
			if err := catalog.Add(s); err != nil {
				return nil, fmt.Errorf("%s: %w", entry.Name(), err)
			}
		}
	}

	return catalog, nil
}
