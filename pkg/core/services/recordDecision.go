package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Oliverngu/roster-advisor/internal/config"
	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/suggest"
	"github.com/Oliverngu/roster-advisor/pkg/db"
)

// RecordDecisionStore defines the database operations needed to record a
// decision
type RecordDecisionStore interface {
	AnalyzeWeekStore
	UpsertDecision(ctx context.Context, decision db.DecisionRecord) error
}

// RecordDecisionArgs names the inputs of one recorded verdict
type RecordDecisionArgs struct {
	UnitID       string
	WeekStart    string
	SuggestionID string
	Decision     model.DecisionState
	Source       string
	Reason       string
}

// RecordDecision stores an accept or reject verdict for a suggestion without
// touching the roster. The suggestion is located in the week's current
// analysis by canonical signature or legacy id, and the decision is keyed by
// the signature so the assistant overlay always matches it. Re-recording
// replaces the earlier verdict.
func RecordDecision(ctx context.Context, database RecordDecisionStore, cfg *config.Config, logger *zap.Logger, args RecordDecisionArgs) (*db.DecisionRecord, error) {
	if args.Decision != model.DecisionAccepted && args.Decision != model.DecisionRejected {
		return nil, fmt.Errorf("decision must be accepted or rejected, got %q", args.Decision)
	}
	if args.SuggestionID == "" {
		return nil, fmt.Errorf("suggestion id is required")
	}

	analysis, err := AnalyzeWeek(ctx, database, cfg, logger, args.UnitID, args.WeekStart)
	if err != nil {
		return nil, err
	}

	suggestion, signature, err := findSuggestion(analysis.Result.Suggestions, args.SuggestionID, signatureMode(cfg))
	if err != nil {
		return nil, err
	}

	record := db.DecisionRecord{
		ID:                 uuid.New().String(),
		UnitID:             args.UnitID,
		WeekStart:          args.WeekStart,
		SuggestionID:       signature,
		LegacySuggestionID: suggest.LegacyID(*suggestion),
		Decision:           string(args.Decision),
		Source:             args.Source,
		Reason:             args.Reason,
		DecidedAt:          nowUTC(),
	}

	if err := database.UpsertDecision(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}

	logger.Info("Decision recorded",
		zap.String("unit_id", args.UnitID),
		zap.String("week_start", args.WeekStart),
		zap.String("suggestion_id", signature),
		zap.String("decision", string(args.Decision)))

	return &record, nil
}
