package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Oliverngu/roster-advisor/internal/config"
	"github.com/Oliverngu/roster-advisor/pkg/core/assistant"
	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/suggest"
	"github.com/Oliverngu/roster-advisor/pkg/db"
)

// AssistantViewStore defines the database operations needed to build the
// assistant view
type AssistantViewStore interface {
	AnalyzeWeekStore
	GetDecisions(ctx context.Context, unitID, weekStart string) ([]db.DecisionRecord, error)
}

// BuildAssistantView analyzes a week and overlays recorded decisions onto the
// resulting suggestions and explanations
func BuildAssistantView(ctx context.Context, database AssistantViewStore, cfg *config.Config, logger *zap.Logger, unitID, weekStart string) (*model.AssistantResponse, error) {
	analysis, err := AnalyzeWeek(ctx, database, cfg, logger, unitID, weekStart)
	if err != nil {
		return nil, err
	}

	records, err := database.GetDecisions(ctx, unitID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch decisions: %w", err)
	}

	decisions := make([]model.Decision, 0, len(records))
	for _, r := range records {
		decisions = append(decisions, model.Decision{
			SuggestionID: r.SuggestionID,
			Decision:     model.DecisionState(r.Decision),
			Reason:       r.Reason,
		})
	}

	response, err := assistant.Build(analysis.Input, analysis.Result, decisions, signatureMode(cfg))
	if err != nil {
		return nil, err
	}

	logger.Debug("Assistant view built",
		zap.Int("suggestions", len(response.Suggestions)),
		zap.Int("explanations", len(response.Explanations)),
		zap.Int("decisions", len(decisions)))

	return response, nil
}

// signatureMode maps the configured mode onto the identity engine, defaulting
// to strict
func signatureMode(cfg *config.Config) suggest.Mode {
	if cfg.SignatureMode == string(suggest.ModeLenient) {
		return suggest.ModeLenient
	}
	return suggest.ModeStrict
}
