package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Oliverngu/roster-advisor/internal/config"
	"github.com/Oliverngu/roster-advisor/pkg/core/accept"
	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/suggest"
	"github.com/Oliverngu/roster-advisor/pkg/db"
)

// AcceptSuggestionStore defines the database operations needed to accept a
// suggestion
type AcceptSuggestionStore interface {
	AnalyzeWeekStore
	GetAppliedSuggestion(ctx context.Context, suggestionID string) (*db.AppliedSuggestion, error)
	ApplySuggestionTx(ctx context.Context, entry db.AppliedSuggestion, dateKeys []string, shifts []db.ShiftRecord, decision db.DecisionRecord) (bool, error)
}

// AcceptSuggestionResult reports what one accept call did. AlreadyApplied
// means the ledger had the suggestion and nothing was changed.
type AcceptSuggestionResult struct {
	Signature      string
	AlreadyApplied bool
	Persisted      bool
	Accept         *accept.AcceptResult
}

// AcceptSuggestion re-derives the week's suggestions, locates the requested
// one by canonical signature or legacy id, applies it and persists the
// modified week behind the applied-suggestion ledger. Accepting the same
// suggestion twice is a no-op the second time.
func AcceptSuggestion(ctx context.Context, database AcceptSuggestionStore, cfg *config.Config, logger *zap.Logger, unitID, weekStart, suggestionID string) (*AcceptSuggestionResult, error) {
	analysis, err := AnalyzeWeek(ctx, database, cfg, logger, unitID, weekStart)
	if err != nil {
		return nil, err
	}

	mode := signatureMode(cfg)
	suggestion, signature, err := findSuggestion(analysis.Result.Suggestions, suggestionID, mode)
	if err != nil {
		return nil, err
	}

	existing, err := database.GetAppliedSuggestion(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to check applied suggestions: %w", err)
	}
	if existing != nil {
		logger.Info("Suggestion already applied, skipping",
			zap.String("suggestion_id", signature),
			zap.String("outcome", existing.Outcome))
		return &AcceptSuggestionResult{Signature: signature, AlreadyApplied: true}, nil
	}

	result := accept.AcceptSuggestion(analysis.Input, *suggestion)
	if len(result.Apply.Applied) == 0 {
		logger.Warn("No actions applied, nothing persisted",
			zap.String("suggestion_id", signature),
			zap.Int("issues", len(result.Apply.Issues)))
		return &AcceptSuggestionResult{Signature: signature, Accept: &result}, nil
	}

	entry := db.AppliedSuggestion{
		SuggestionID:   signature,
		UnitID:         unitID,
		WeekStart:      weekStart,
		Outcome:        string(result.Outcome),
		AppliedActions: result.Apply.Applied,
		AppliedAt:      nowUTC(),
	}
	decision := db.DecisionRecord{
		ID:                 uuid.New().String(),
		UnitID:             unitID,
		WeekStart:          weekStart,
		SuggestionID:       signature,
		LegacySuggestionID: suggest.LegacyID(*suggestion),
		Decision:           string(model.DecisionAccepted),
		Source:             "accept",
		DecidedAt:          nowUTC(),
	}

	persisted, err := database.ApplySuggestionTx(ctx, entry, analysis.Input.DateKeys,
		ShiftRecords(unitID, result.Apply.Shifts), decision)
	if err != nil {
		return nil, fmt.Errorf("failed to persist accepted suggestion: %w", err)
	}
	if !persisted {
		// Lost a race with a concurrent accept of the same suggestion
		return &AcceptSuggestionResult{Signature: signature, AlreadyApplied: true, Accept: &result}, nil
	}

	logger.Info("Suggestion applied",
		zap.String("unit_id", unitID),
		zap.String("week_start", weekStart),
		zap.String("suggestion_id", signature),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("applied_actions", len(result.Apply.Applied)),
		zap.Int("resolved_violations", len(result.ResolvedViolations)))

	return &AcceptSuggestionResult{Signature: signature, Persisted: true, Accept: &result}, nil
}

// findSuggestion matches by canonical signature first and falls back to the
// legacy readable id
func findSuggestion(suggestions []model.Suggestion, suggestionID string, mode suggest.Mode) (*model.Suggestion, string, error) {
	for i := range suggestions {
		signature, err := suggest.SignatureV2(suggestions[i], mode)
		if err != nil {
			return nil, "", fmt.Errorf("failed to sign suggestion: %w", err)
		}
		if signature == suggestionID || suggest.LegacyID(suggestions[i]) == suggestionID {
			return &suggestions[i], signature, nil
		}
	}
	return nil, "", fmt.Errorf("suggestion %s not found in current analysis", suggestionID)
}
