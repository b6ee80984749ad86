package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schedule schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS schedules (
					jurisdiction TEXT NOT NULL,
					year INTEGER NOT NULL,
					name TEXT NOT NULL DEFAULT '',
					currency TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (jurisdiction, year)
				)`,
				`CREATE TABLE IF NOT EXISTS brackets (
					jurisdiction TEXT NOT NULL,
					year INTEGER NOT NULL,
					filing_status TEXT NOT NULL,
					position INTEGER NOT NULL,
					rate REAL NOT NULL,
					upper_bound REAL,
					PRIMARY KEY (jurisdiction, year, filing_status, position),
					FOREIGN KEY (jurisdiction, year) REFERENCES schedules(jurisdiction, year)
				)`,
				`CREATE TABLE IF NOT EXISTS standard_deductions (
					jurisdiction TEXT NOT NULL,
					year INTEGER NOT NULL,
					filing_status TEXT NOT NULL,
					amount REAL NOT NULL,
					PRIMARY KEY (jurisdiction, year, filing_status),
					FOREIGN KEY (jurisdiction, year) REFERENCES schedules(jurisdiction, year)
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Record schedule source and forbid in-place edits",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE schedules ADD COLUMN source TEXT NOT NULL DEFAULT ''`,
				`CREATE TRIGGER IF NOT EXISTS brackets_immutable
					BEFORE UPDATE ON brackets
					BEGIN SELECT RAISE(ABORT, 'bracket tables are immutable'); END`,
				`CREATE TRIGGER IF NOT EXISTS standard_deductions_immutable
					BEFORE UPDATE ON standard_deductions
					BEGIN SELECT RAISE(ABORT, 'standard deductions are immutable'); END`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate applies any pending migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
