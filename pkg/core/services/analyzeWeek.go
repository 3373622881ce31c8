package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Oliverngu/roster-advisor/internal/config"
	"github.com/Oliverngu/roster-advisor/pkg/core/engine"
	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/db"
)

// AnalyzeWeekStore defines the database operations needed to analyze a week
type AnalyzeWeekStore interface {
	GetUsers(ctx context.Context) ([]db.UserRecord, error)
	GetPositions(ctx context.Context) ([]db.PositionRecord, error)
	GetShifts(ctx context.Context, unitID string, dateKeys []string) ([]db.ShiftRecord, error)
}

// AnalyzeWeekResult bundles the assembled input with the engine output
type AnalyzeWeekResult struct {
	Input  *model.EngineInput
	Result *model.EngineResult
}

// AnalyzeWeek loads one unit's roster for a week, assembles the engine input
// from configuration and stored records, and runs the analysis pipeline
func AnalyzeWeek(ctx context.Context, database AnalyzeWeekStore, cfg *config.Config, logger *zap.Logger, unitID, weekStart string) (*AnalyzeWeekResult, error) {
	logger.Debug("Analyzing week", zap.String("unit_id", unitID), zap.String("week_start", weekStart))

	dateKeys, err := WeekDateKeys(weekStart)
	if err != nil {
		return nil, err
	}

	users, err := database.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	positions, err := database.GetPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}

	shifts, err := database.GetShifts(ctx, unitID, dateKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}

	logger.Debug("Loaded roster records",
		zap.Int("users", len(users)),
		zap.Int("positions", len(positions)),
		zap.Int("shifts", len(shifts)))

	input, err := BuildEngineInput(cfg, unitID, weekStart, users, positions, shifts)
	if err != nil {
		return nil, err
	}

	result := engine.Run(input)

	logger.Info("Week analyzed",
		zap.String("unit_id", unitID),
		zap.String("week_start", weekStart),
		zap.Int("violations", len(result.Violations)),
		zap.Int("suggestions", len(result.Suggestions)))

	return &AnalyzeWeekResult{Input: input, Result: result}, nil
}
