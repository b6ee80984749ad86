package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/taxflow/internal/common"
	"github.com/Veraticus/taxflow/internal/model"
)

// ScheduleRecord describes a stored schedule without its tables.
type ScheduleRecord struct {
	CreatedAt    time.Time
	Jurisdiction model.Jurisdiction
	Name         string
	Currency     string
	Source       string
	Year         int
}

// ScheduleMeta is the descriptive data saved alongside a schedule.
type ScheduleMeta struct {
	Name     string
	Currency string
	Source   string
}

// SaveSchedule stores a new schedule. Schedules are never overwritten: saving
// a (jurisdiction, year) that already exists returns common.ErrDuplicateEntry.
func (s *SQLiteStorage) SaveSchedule(ctx context.Context, schedule model.Schedule, meta ScheduleMeta) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSchedule(schedule); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schedules WHERE jurisdiction = ? AND year = ?`,
		schedule.Jurisdiction, schedule.Year).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check existing schedule: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: schedule %s/%d", common.ErrDuplicateEntry, schedule.Jurisdiction, schedule.Year)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schedules (jurisdiction, year, name, currency, source) VALUES (?, ?, ?, ?, ?)`,
		schedule.Jurisdiction, schedule.Year, meta.Name, meta.Currency, meta.Source); err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	bracketStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO brackets (jurisdiction, year, filing_status, position, rate, upper_bound)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare bracket insert: %w", err)
	}
	defer bracketStmt.Close()

	for _, status := range schedule.Statuses() {
		for i, b := range schedule.Brackets[status].Brackets {
			var upper sql.NullFloat64
			if !b.Unbounded() {
				upper = sql.NullFloat64{Float64: b.UpperBound, Valid: true}
			}
			if _, err := bracketStmt.ExecContext(ctx,
				schedule.Jurisdiction, schedule.Year, status, i, b.Rate, upper); err != nil {
				return fmt.Errorf("failed to insert %s bracket %d: %w", status, i, err)
			}
		}
	}

	for status, amount := range schedule.StandardDeduction {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO standard_deductions (jurisdiction, year, filing_status, amount) VALUES (?, ?, ?, ?)`,
			schedule.Jurisdiction, schedule.Year, status, amount); err != nil {
			return fmt.Errorf("failed to insert standard deduction for %s: %w", status, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule: %w", err)
	}
	return nil
}

// GetSchedule loads one schedule. A missing schedule returns common.ErrNotFound.
func (s *SQLiteStorage) GetSchedule(ctx context.Context, j model.Jurisdiction, year int) (model.Schedule, error) {
	if err := validateContext(ctx); err != nil {
		return model.Schedule{}, err
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM schedules WHERE jurisdiction = ? AND year = ?`, j, year).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Schedule{}, fmt.Errorf("schedule %s/%d: %w", j, year, common.ErrNotFound)
	}
	if err != nil {
		return model.Schedule{}, fmt.Errorf("failed to query schedule: %w", err)
	}

	return s.loadSchedule(ctx, j, year)
}

// ListSchedules returns every stored schedule ordered by jurisdiction and year.
func (s *SQLiteStorage) ListSchedules(ctx context.Context) ([]ScheduleRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT jurisdiction, year, name, currency, source, created_at
		 FROM schedules ORDER BY jurisdiction, year`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var records []ScheduleRecord
	for rows.Next() {
		var r ScheduleRecord
		if err := rows.Scan(&r.Jurisdiction, &r.Year, &r.Name, &r.Currency, &r.Source, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}
	return records, nil
}

// LoadSchedules returns every stored schedule with its tables.
func (s *SQLiteStorage) LoadSchedules(ctx context.Context) ([]model.Schedule, error) {
	records, err := s.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}

	schedules := make([]model.Schedule, 0, len(records))
	for _, r := range records {
		schedule, err := s.loadSchedule(ctx, r.Jurisdiction, r.Year)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}

func (s *SQLiteStorage) loadSchedule(ctx context.Context, j model.Jurisdiction, year int) (model.Schedule, error) {
	schedule := model.Schedule{
		Jurisdiction:      j,
		Year:              year,
		Brackets:          make(map[model.FilingStatus]model.BracketTable),
		StandardDeduction: make(map[model.FilingStatus]float64),
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT filing_status, rate, upper_bound FROM brackets
		 WHERE jurisdiction = ? AND year = ?
		 ORDER BY filing_status, position`, j, year)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("failed to query brackets: %w", err)
	}

	rates := make(map[model.FilingStatus][]float64)
	uppers := make(map[model.FilingStatus][]*float64)
	for rows.Next() {
		var (
			status model.FilingStatus
			rate   float64
			upper  sql.NullFloat64
		)
		if err := rows.Scan(&status, &rate, &upper); err != nil {
			_ = rows.Close()
			return model.Schedule{}, fmt.Errorf("failed to scan bracket: %w", err)
		}
		rates[status] = append(rates[status], rate)
		if upper.Valid {
			bound := upper.Float64
			uppers[status] = append(uppers[status], &bound)
		} else {
			uppers[status] = append(uppers[status], nil)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return model.Schedule{}, fmt.Errorf("failed to iterate brackets: %w", err)
	}
	_ = rows.Close()

	for status := range rates {
		key := model.TableKey{Jurisdiction: j, Status: status, Year: year}
		table, err := model.NewBracketTable(key, rates[status], uppers[status])
		if err != nil {
			return model.Schedule{}, fmt.Errorf("stored table is corrupt: %w", err)
		}
		schedule.Brackets[status] = table
	}

	dRows, err := s.db.QueryContext(ctx,
		`SELECT filing_status, amount FROM standard_deductions WHERE jurisdiction = ? AND year = ?`, j, year)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("failed to query standard deductions: %w", err)
	}
	defer dRows.Close()

	for dRows.Next() {
		var (
			status model.FilingStatus
			amount float64
		)
		if err := dRows.Scan(&status, &amount); err != nil {
			return model.Schedule{}, fmt.Errorf("failed to scan standard deduction: %w", err)
		}
		schedule.StandardDeduction[status] = amount
	}
	if err := dRows.Err(); err != nil {
		return model.Schedule{}, fmt.Errorf("failed to iterate standard deductions: %w", err)
	}

	return schedule, nil
}
