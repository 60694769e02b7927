package history

import (
	"context"
	"fmt"
	"time"
)

// Run is one recorded analysis.
type Run struct {
	// ID is the run identifier, assigned by the caller's IDGenerator.
	ID string

	// Entity is the entity kind label ("user" or "customer").
	Entity string

	// Label identifies which entity was analyzed (a username, a
	// customer code). Free-form, chosen by the caller.
	Label string

	// Fingerprint is the content address of the analyzed snapshot.
	Fingerprint string

	// Score is the computed health score.
	Score int

	// InsightCount and ActionCount summarize the report for listings.
	InsightCount int
	ActionCount  int

	// ReportJSON is the full serialized report, stored verbatim.
	ReportJSON string

	// RecordedAt is when the run was recorded, UTC.
	RecordedAt time.Time
}

// RecordRun inserts a run record. Returns whether a new row was
// inserted.
//
// Uses ON CONFLICT(entity, label, fingerprint) DO NOTHING for
// idempotency: analysis is deterministic, so a duplicate insert
// carries an identical report and is silently ignored.
func (s *Store) RecordRun(ctx context.Context, run Run) (inserted bool, err error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, entity, label, fingerprint, score, insight_count, action_count, report, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity, label, fingerprint) DO NOTHING
	`,
		run.ID,
		run.Entity,
		run.Label,
		run.Fingerprint,
		run.Score,
		run.InsightCount,
		run.ActionCount,
		run.ReportJSON,
		run.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("record run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record run: rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
