package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Oliverngu/roster-advisor/pkg/db"
)

// GetDecisions retrieves all recorded decisions for a unit and week
func (d *DB) GetDecisions(ctx context.Context, unitID, weekStart string) ([]db.DecisionRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, unit_id, week_start, suggestion_id, legacy_suggestion_id, decision, source, reason, decided_at
		FROM suggestion_decision
		WHERE unit_id = $1 AND week_start = $2
		ORDER BY decided_at, suggestion_id
	`, unitID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []db.DecisionRecord
	for rows.Next() {
		r, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decisions: %w", err)
	}

	return decisions, nil
}

// UpsertDecision records a decision, replacing any earlier decision for the
// same suggestion in the same unit and week
func (d *DB) UpsertDecision(ctx context.Context, decision db.DecisionRecord) error {
	return upsertDecision(ctx, d.pool, decision)
}

func upsertDecision(ctx context.Context, q execQuerier, decision db.DecisionRecord) error {
	_, err := q.Exec(ctx, `
		INSERT INTO suggestion_decision
			(id, unit_id, week_start, suggestion_id, legacy_suggestion_id, decision, source, reason, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (unit_id, week_start, suggestion_id) DO UPDATE SET
			decision = EXCLUDED.decision,
			source = EXCLUDED.source,
			reason = EXCLUDED.reason,
			decided_at = EXCLUDED.decided_at
	`, decision.ID, decision.UnitID, decision.WeekStart, decision.SuggestionID,
		decision.LegacySuggestionID, decision.Decision, decision.Source, decision.Reason,
		decision.DecidedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert decision: %w", err)
	}
	return nil
}

func scanDecision(rows pgx.Rows) (db.DecisionRecord, error) {
	var r db.DecisionRecord
	var weekStart time.Time
	var decidedAt time.Time
	if err := rows.Scan(&r.ID, &r.UnitID, &weekStart, &r.SuggestionID, &r.LegacySuggestionID,
		&r.Decision, &r.Source, &r.Reason, &decidedAt); err != nil {
		return db.DecisionRecord{}, fmt.Errorf("failed to scan decision: %w", err)
	}
	r.WeekStart = weekStart.Format(dateKeyLayout)
	r.DecidedAt = decidedAt.UTC()
	return r, nil
}
