package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version the application expects.
const ExpectedSchemaVersion = 1

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS runs (
					id TEXT PRIMARY KEY,
					source_file TEXT NOT NULL,
					target_file TEXT NOT NULL,
					started_at DATETIME NOT NULL,
					completed_at DATETIME NOT NULL,
					total_sources INTEGER NOT NULL,
					total_targets INTEGER NOT NULL,
					matched_count INTEGER NOT NULL,
					unmatched_source_count INTEGER NOT NULL,
					unmatched_target_count INTEGER NOT NULL,
					manual_review_count INTEGER NOT NULL,
					match_rate REAL NOT NULL,
					total_matched_amount TEXT NOT NULL,
					total_unmatched_amount TEXT NOT NULL
				)`,
				`CREATE INDEX idx_runs_started ON runs(started_at)`,

				`CREATE TABLE IF NOT EXISTS run_matches (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id TEXT NOT NULL,
					source_id TEXT NOT NULL,
					source_date DATETIME NOT NULL,
					source_amount TEXT NOT NULL,
					source_reference TEXT,
					source_description TEXT,
					target_id TEXT NOT NULL,
					target_date DATETIME NOT NULL,
					target_amount TEXT NOT NULL,
					target_reference TEXT,
					target_description TEXT,
					amount_score REAL NOT NULL,
					text_score REAL NOT NULL,
					date_score REAL NOT NULL,
					reference_bonus REAL NOT NULL,
					status TEXT NOT NULL,
					matched_by TEXT NOT NULL,
					notes TEXT,
					FOREIGN KEY (run_id) REFERENCES runs(id)
				)`,
				`CREATE INDEX idx_run_matches_run ON run_matches(run_id)`,
				`CREATE INDEX idx_run_matches_status ON run_matches(status)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("migration query failed: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_versions (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create schema_versions table: %w", err)
	}

	var current sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM schema_versions`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if current.Valid && m.Version <= int(current.Int64) {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_versions (version) VALUES (?)`, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	return nil
}
