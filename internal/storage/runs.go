package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/muudzo/tally/internal/common"
	"github.com/muudzo/tally/internal/model"
)

// SaveRun stores a completed run and its match results in one transaction.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.ReconciliationRun, results []model.MatchResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, source_file, target_file, started_at, completed_at,
			total_sources, total_targets, matched_count,
			unmatched_source_count, unmatched_target_count, manual_review_count,
			match_rate, total_matched_amount, total_unmatched_amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceFile, run.TargetFile, run.StartedAt, run.CompletedAt,
		run.Summary.TotalSourceTransactions, run.Summary.TotalTargetTransactions,
		run.Summary.MatchedCount, run.Summary.UnmatchedSourceCount,
		run.Summary.UnmatchedTargetCount, run.Summary.ManualReviewCount,
		run.Summary.MatchRate,
		run.Summary.TotalMatchedAmount.String(),
		run.Summary.TotalUnmatchedAmount.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_matches (
			run_id,
			source_id, source_date, source_amount, source_reference, source_description,
			target_id, target_date, target_amount, target_reference, target_description,
			amount_score, text_score, date_score, reference_bonus,
			status, matched_by, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range results {
		_, err = stmt.ExecContext(ctx,
			run.ID,
			r.Source.ID, r.Source.TransactionDate, r.Source.Amount.String(),
			r.Source.Reference, r.Source.Description,
			r.Target.ID, r.Target.TransactionDate, r.Target.Amount.String(),
			r.Target.Reference, r.Target.Description,
			r.Score.AmountScore, r.Score.TextScore, r.Score.DateScore, r.Score.ReferenceBonus,
			string(r.Status), r.MatchedBy, r.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert match: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.ReconciliationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_file, target_file, started_at, completed_at,
			total_sources, total_targets, matched_count,
			unmatched_source_count, unmatched_target_count, manual_review_count,
			match_rate, total_matched_amount, total_unmatched_amount
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.ReconciliationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run and its stored match results.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.ReconciliationRun, []model.MatchResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_file, target_file, started_at, completed_at,
			total_sources, total_targets, matched_count,
			unmatched_source_count, unmatched_target_count, manual_review_count,
			match_rate, total_matched_amount, total_unmatched_amount
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
		}
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, source_date, source_amount, source_reference, source_description,
			target_id, target_date, target_amount, target_reference, target_description,
			amount_score, text_score, date_score, reference_bonus,
			status, matched_by, notes
		FROM run_matches WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.MatchResult
	for rows.Next() {
		var r model.MatchResult
		var sourceAmount, targetAmount, status string
		var sourceDate, targetDate time.Time
		err := rows.Scan(
			&r.Source.ID, &sourceDate, &sourceAmount, &r.Source.Reference, &r.Source.Description,
			&r.Target.ID, &targetDate, &targetAmount, &r.Target.Reference, &r.Target.Description,
			&r.Score.AmountScore, &r.Score.TextScore, &r.Score.DateScore, &r.Score.ReferenceBonus,
			&status, &r.MatchedBy, &r.Notes,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan match: %w", err)
		}
		r.Source.TransactionDate = sourceDate
		r.Target.TransactionDate = targetDate
		if r.Source.Amount, err = decimal.NewFromString(sourceAmount); err != nil {
			return nil, nil, fmt.Errorf("bad stored source amount %q: %w", sourceAmount, err)
		}
		if r.Target.Amount, err = decimal.NewFromString(targetAmount); err != nil {
			return nil, nil, fmt.Errorf("bad stored target amount %q: %w", targetAmount, err)
		}
		r.Status = model.MatchStatus(status)
		results = append(results, r)
	}

	return &run, results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.ReconciliationRun, error) {
	var run model.ReconciliationRun
	var matchedAmount, unmatchedAmount string

	err := row.Scan(
		&run.ID, &run.SourceFile, &run.TargetFile, &run.StartedAt, &run.CompletedAt,
		&run.Summary.TotalSourceTransactions, &run.Summary.TotalTargetTransactions,
		&run.Summary.MatchedCount, &run.Summary.UnmatchedSourceCount,
		&run.Summary.UnmatchedTargetCount, &run.Summary.ManualReviewCount,
		&run.Summary.MatchRate, &matchedAmount, &unmatchedAmount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("failed to scan run: %w", err)
	}

	if run.Summary.TotalMatchedAmount, err = decimal.NewFromString(matchedAmount); err != nil {
		return run, fmt.Errorf("bad stored matched amount %q: %w", matchedAmount, err)
	}
	if run.Summary.TotalUnmatchedAmount, err = decimal.NewFromString(unmatchedAmount); err != nil {
		return run, fmt.Errorf("bad stored unmatched amount %q: %w", unmatchedAmount, err)
	}
	return run, nil
}
