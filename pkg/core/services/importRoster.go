package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Oliverngu/roster-advisor/internal/config"
	"github.com/Oliverngu/roster-advisor/pkg/clients/sheetsclient"
	"github.com/Oliverngu/roster-advisor/pkg/db"
)

// ImportRosterStore defines the database operations needed to import a roster
type ImportRosterStore interface {
	UpsertUsers(ctx context.Context, users []db.UserRecord) error
	UpsertPositions(ctx context.Context, positions []db.PositionRecord) error
	ReplaceShifts(ctx context.Context, unitID string, dateKeys []string, shifts []db.ShiftRecord) error
}

// RosterClient lists the roster rows from the configured spreadsheet
type RosterClient interface {
	ListRoster(cfg *config.Config) (*sheetsclient.RosterImport, error)
}

// ImportRosterResult summarizes one import
type ImportRosterResult struct {
	Users     int
	Positions int
	Shifts    int
	Skipped   int
}

// ImportRoster pulls the roster sheet, upserts the staff and position records
// it mentions, and replaces the unit's shifts for the given week. Rows dated
// outside the week are counted as skipped, not errors.
func ImportRoster(ctx context.Context, database ImportRosterStore, client RosterClient, cfg *config.Config, logger *zap.Logger, unitID, weekStart string) (*ImportRosterResult, error) {
	dateKeys, err := WeekDateKeys(weekStart)
	if err != nil {
		return nil, err
	}

	logger.Debug("Importing roster",
		zap.String("unit_id", unitID),
		zap.String("week_start", weekStart),
		zap.String("sheet_id", cfg.RosterSheetID))

	roster, err := client.ListRoster(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}

	inWeek := make(map[string]bool, len(dateKeys))
	for _, key := range dateKeys {
		inWeek[key] = true
	}

	var shifts []db.ShiftRecord
	skipped := 0
	for _, shift := range roster.Shifts {
		if shift.UnitID == "" {
			shift.UnitID = unitID
		}
		if shift.UnitID != unitID || !inWeek[shift.DateKey] {
			skipped++
			continue
		}
		shifts = append(shifts, shift)
	}

	if err := database.UpsertUsers(ctx, roster.Users); err != nil {
		return nil, fmt.Errorf("failed to upsert users: %w", err)
	}
	if err := database.UpsertPositions(ctx, roster.Positions); err != nil {
		return nil, fmt.Errorf("failed to upsert positions: %w", err)
	}
	if err := database.ReplaceShifts(ctx, unitID, dateKeys, shifts); err != nil {
		return nil, fmt.Errorf("failed to replace shifts: %w", err)
	}

	logger.Info("Roster imported",
		zap.String("unit_id", unitID),
		zap.String("week_start", weekStart),
		zap.Int("users", len(roster.Users)),
		zap.Int("positions", len(roster.Positions)),
		zap.Int("shifts", len(shifts)),
		zap.Int("skipped", skipped))

	return &ImportRosterResult{
		Users:     len(roster.Users),
		Positions: len(roster.Positions),
		Shifts:    len(shifts),
		Skipped:   skipped,
	}, nil
}
