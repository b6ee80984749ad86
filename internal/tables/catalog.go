package tables

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Veraticus/taxflow/internal/common"
	"github.com/Veraticus/taxflow/internal/model"
)

// Info describes a jurisdiction in the catalog.
type Info struct {
	Jurisdiction model.Jurisdiction `json:"jurisdiction"`
	Name         string             `json:"name"`
	Currency     string             `json:"currency"`
}

// Catalog indexes schedules by jurisdiction and year. Schedules can be added
// but never replaced.
type Catalog struct {
	schedules map[model.Jurisdiction]map[int]model.Schedule
	info      map[model.Jurisdiction]Info
	mu        sync.RWMutex
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		schedules: make(map[model.Jurisdiction]map[int]model.Schedule),
		info:      make(map[model.Jurisdiction]Info),
	}
}

// Describe sets the display name and currency of a jurisdiction.
func (c *Catalog) Describe(j model.Jurisdiction, name, currency string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info[j] = Info{Jurisdiction: j, Name: name, Currency: currency}
}

// Add validates and registers a schedule. Adding a (jurisdiction, year) that
// is already present fails with common.ErrDuplicateEntry.
func (c *Catalog) Add(s model.Schedule) error {
	if err := s.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	years, ok := c.schedules[s.Jurisdiction]
	if !ok {
		years = make(map[int]model.Schedule)
		c.schedules[s.Jurisdiction] = years
	}
	if _, exists := years[s.Year]; exists {
		return fmt.Errorf("%w: schedule %s/%d", common.ErrDuplicateEntry, s.Jurisdiction, s.Year)
	}
	years[s.Year] = s

	if _, ok := c.info[s.Jurisdiction]; !ok {
		c.info[s.Jurisdiction] = Info{Jurisdiction: s.Jurisdiction, Name: string(s.Jurisdiction)}
	}
	return nil
}

// Merge adds every schedule not already present and returns the ones skipped
// because the catalog already had them.
func (c *Catalog) Merge(schedules []model.Schedule) ([]model.Schedule, error) {
	var skipped []model.Schedule
	for _, s := range schedules {
		if _, ok := c.Schedule(s.Jurisdiction, s.Year); ok {
			skipped = append(skipped, s)
			continue
		}
		if err := c.Add(s); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

// Jurisdictions lists the catalog's jurisdictions sorted by identifier.
func (c *Catalog) Jurisdictions() []Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]Info, 0, len(c.info))
	for _, info := range c.info {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Jurisdiction < infos[j].Jurisdiction })
	return infos
}

// Info returns the description of a jurisdiction.
func (c *Catalog) Info(j model.Jurisdiction) (Info, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.info[j]
	return info, ok
}

// Years lists the tabulated years for a jurisdiction in ascending order.
func (c *Catalog) Years(j model.Jurisdiction) []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	years := make([]int, 0, len(c.schedules[j]))
	for year := range c.schedules[j] {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// Schedule returns the schedule for an exact year.
func (c *Catalog) Schedule(j model.Jurisdiction, year int) (model.Schedule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schedules[j][year]
	return s, ok
}

// Schedules returns every schedule of a jurisdiction ordered by year.
func (c *Catalog) Schedules(j model.Jurisdiction) []model.Schedule {
	years := c.Years(j)

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Schedule, 0, len(years))
	for _, year := range years {
		out = append(out, c.schedules[j][year])
	}
	return out
}

// Table returns the bracket table for key. When the exact year is not
// tabulated, the latest earlier year is used; the returned table's key
// carries the year actually used.
func (c *Catalog) Table(key model.TableKey) (model.BracketTable, error) {
	years := c.Years(key.Jurisdiction)
	if len(years) == 0 {
		return model.BracketTable{}, fmt.Errorf("%w: unknown jurisdiction %q", common.ErrTableNotFound, key.Jurisdiction)
	}

	idx := sort.SearchInts(years, key.Year+1) - 1
	if idx < 0 {
		return model.BracketTable{}, fmt.Errorf("%w: %s has no table for %d or earlier (first year %d)",
			common.ErrTableNotFound, key.Jurisdiction, key.Year, years[0])
	}

	schedule, _ := c.Schedule(key.Jurisdiction, years[idx])
	table, ok := schedule.Brackets[key.Status]
	if !ok {
		return model.BracketTable{}, fmt.Errorf("%w: %s has no %s table for %d",
			common.ErrTableNotFound, key.Jurisdiction, key.Status, schedule.Year)
	}
	return table, nil
}

// StandardDeductions returns the tabulated standard deduction for a status,
// indexed by year.
func (c *Catalog) StandardDeductions(j model.Jurisdiction, status model.FilingStatus) map[int]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[int]float64, len(c.schedules[j]))
	for year, s := range c.schedules[j] {
		if amount, ok := s.StandardDeduction[status]; ok {
			out[year] = amount
		}
	}
	return out
}
