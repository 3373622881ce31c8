package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Oliverngu/roster-advisor/pkg/db"
)

// GetAppliedSuggestion looks up a ledger entry by canonical suggestion id.
// Returns nil without error when the suggestion has never been applied.
func (d *DB) GetAppliedSuggestion(ctx context.Context, suggestionID string) (*db.AppliedSuggestion, error) {
	var entry db.AppliedSuggestion
	var weekStart, appliedAt time.Time
	err := d.pool.QueryRow(ctx, `
		SELECT suggestion_id, unit_id, week_start, outcome, applied_actions, applied_at
		FROM applied_suggestion
		WHERE suggestion_id = $1
	`, suggestionID).Scan(&entry.SuggestionID, &entry.UnitID, &weekStart, &entry.Outcome,
		&entry.AppliedActions, &appliedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query applied suggestion: %w", err)
	}

	entry.WeekStart = weekStart.Format(dateKeyLayout)
	entry.AppliedAt = appliedAt.UTC()
	return &entry, nil
}

// ApplySuggestionTx writes the modified week, the ledger entry and the
// accepting decision in one transaction. An already-present ledger entry makes
// it return false with nothing changed; the ledger primary key stops two
// concurrent accepts of the same suggestion from both committing.
func (d *DB) ApplySuggestionTx(ctx context.Context, entry db.AppliedSuggestion, dateKeys []string, shifts []db.ShiftRecord, decision db.DecisionRecord) (bool, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing string
	err = tx.QueryRow(ctx, `
		SELECT suggestion_id FROM applied_suggestion
		WHERE suggestion_id = $1
		FOR UPDATE
	`, entry.SuggestionID).Scan(&existing)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("failed to check applied suggestion: %w", err)
	}

	if err := replaceShiftsTx(ctx, tx, entry.UnitID, dateKeys, shifts); err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO applied_suggestion (suggestion_id, unit_id, week_start, outcome, applied_actions, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.SuggestionID, entry.UnitID, entry.WeekStart, entry.Outcome,
		entry.AppliedActions, entry.AppliedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert applied suggestion: %w", err)
	}

	if err := upsertDecision(ctx, tx, decision); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}
