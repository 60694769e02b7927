package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = `id, entity, label, fingerprint, score, insight_count, action_count, report, recorded_at`

// ListRuns returns all runs for an entity label, oldest first.
// Ordering is deterministic: recorded_at, then id with binary collation.
//
// Returns an empty slice (not nil) when no runs exist.
func (s *Store) ListRuns(ctx context.Context, entity, label string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE entity = ? AND label = ?
		ORDER BY recorded_at ASC, id COLLATE BINARY ASC
	`, entity, label)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// GetRun returns the run with the given ID. The boolean reports whether
// it exists.
func (s *Store) GetRun(ctx context.Context, id string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// FindByFingerprint returns the recorded run for a snapshot fingerprint
// under an entity kind, if one exists. Because analysis is
// deterministic, a hit means the stored report is current for that
// snapshot.
func (s *Store) FindByFingerprint(ctx context.Context, entity, fingerprint string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE entity = ? AND fingerprint = ?
		ORDER BY recorded_at ASC, id COLLATE BINARY ASC
		LIMIT 1
	`, entity, fingerprint)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanRun.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var recordedAt string

	err := row.Scan(
		&run.ID,
		&run.Entity,
		&run.Label,
		&run.Fingerprint,
		&run.Score,
		&run.InsightCount,
		&run.ActionCount,
		&run.ReportJSON,
		&recordedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.RecordedAt, err = time.Parse(time.RFC3339, recordedAt)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: parse recorded_at: %w", err)
	}

	return run, nil
}
