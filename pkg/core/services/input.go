package services

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/Oliverngu/roster-advisor/internal/config"
	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/timeutil"
	"github.com/Oliverngu/roster-advisor/pkg/db"
)

// WeekDateKeys expands a week start date into the seven date keys of the week
func WeekDateKeys(weekStart string) ([]string, error) {
	if _, err := timeutil.ParseDateKey(weekStart); err != nil {
		return nil, fmt.Errorf("invalid week start: %w", err)
	}

	dateKeys := make([]string, 7)
	for i := range dateKeys {
		key, err := timeutil.AddDays(weekStart, i)
		if err != nil {
			return nil, err
		}
		dateKeys[i] = key
	}
	return dateKeys, nil
}

// BuildEngineInput assembles an engine input for one unit and week from
// stored records and configuration
func BuildEngineInput(cfg *config.Config, unitID, weekStart string, users []db.UserRecord, positions []db.PositionRecord, shifts []db.ShiftRecord) (*model.EngineInput, error) {
	dateKeys, err := WeekDateKeys(weekStart)
	if err != nil {
		return nil, err
	}

	rules, err := buildRuleset(cfg, weekStart)
	if err != nil {
		return nil, err
	}

	input := &model.EngineInput{
		UnitID:    unitID,
		WeekStart: weekStart,
		DateKeys:  dateKeys,
		Users:     make([]model.User, 0, len(users)),
		Positions: make([]model.Position, 0, len(positions)),
		Shifts:    make([]model.Shift, 0, len(shifts)),
		Settings:  buildSettings(cfg),
		Rules:     rules,
	}

	for _, u := range users {
		input.Users = append(input.Users, model.User{
			ID:      u.ID,
			Name:    u.Name,
			Active:  u.Active,
			UnitIDs: u.UnitIDs,
		})
	}
	for _, p := range positions {
		input.Positions = append(input.Positions, model.Position{ID: p.ID, Name: p.Name})
	}
	for _, s := range shifts {
		input.Shifts = append(input.Shifts, model.Shift{
			ID:         s.ID,
			UserID:     s.UserID,
			UnitID:     s.UnitID,
			DateKey:    s.DateKey,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			PositionID: s.PositionID,
			IsDayOff:   s.IsDayOff,
		})
	}

	if err := model.ValidateInput(input); err != nil {
		return nil, fmt.Errorf("engine input validation failed: %w", err)
	}

	return input, nil
}

// ShiftRecords converts engine shifts back into storable records for one unit.
// Shifts created by an accepted suggestion carry an empty unit id until here.
func ShiftRecords(unitID string, shifts []model.Shift) []db.ShiftRecord {
	records := make([]db.ShiftRecord, 0, len(shifts))
	for _, s := range shifts {
		record := db.ShiftRecord{
			ID:         s.ID,
			UnitID:     s.UnitID,
			UserID:     s.UserID,
			DateKey:    s.DateKey,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			PositionID: s.PositionID,
			IsDayOff:   s.IsDayOff,
		}
		if record.UnitID == "" {
			record.UnitID = unitID
		}
		records = append(records, record)
	}
	return records
}

func buildSettings(cfg *config.Config) model.ScheduleSettings {
	settings := model.ScheduleSettings{
		OpeningTime:          cfg.OpeningTime,
		ClosingTime:          cfg.ClosingTime,
		ClosingOffsetMinutes: cfg.ClosingOffsetMinutes,
	}
	if len(cfg.WeekdayHours) > 0 {
		settings.WeekdayOverrides = make(map[string]model.DayHours, len(cfg.WeekdayHours))
		for day, hours := range cfg.WeekdayHours {
			settings.WeekdayOverrides[day] = model.DayHours{
				OpeningTime: hours.OpeningTime,
				ClosingTime: hours.ClosingTime,
			}
		}
	}
	return settings
}

// buildRuleset expands the configured coverage overrides into date-keyed
// coverage rules for the analyzed week
func buildRuleset(cfg *config.Config, weekStart string) (model.Ruleset, error) {
	rules := model.Ruleset{BucketMinutes: cfg.BucketMinutes}

	if cfg.MaxHoursPerDay != nil {
		rules.MaxHoursDay = &model.MaxHoursRule{MaxHours: *cfg.MaxHoursPerDay}
	}
	if cfg.MinRestHours != nil {
		rules.MinRest = &model.MinRestRule{MinHours: *cfg.MinRestHours}
	}

	if len(cfg.Coverage) == 0 {
		return rules, nil
	}

	weekStartTime, err := timeutil.ParseDateKey(weekStart)
	if err != nil {
		return model.Ruleset{}, err
	}
	weekEnd := weekStartTime.AddDate(0, 0, 6)

	for i, override := range cfg.Coverage {
		rr, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			return model.Ruleset{}, fmt.Errorf("invalid rrule in coverage[%d]: %w", i, err)
		}
		// Anchor the recurrence before the analyzed week so weekly patterns
		// match regardless of when the config was written
		rr.DTStart(weekStartTime.AddDate(0, 0, -7))

		var matched []string
		for _, occurrence := range rr.Between(weekStartTime, weekEnd, true) {
			matched = append(matched, occurrence.Format(timeutil.DateKeyLayout))
		}
		if len(matched) == 0 {
			continue
		}

		rules.MinCoverage = append(rules.MinCoverage, model.MinCoverageRule{
			PositionID: override.PositionID,
			DateKeys:   matched,
			StartTime:  override.StartTime,
			EndTime:    override.EndTime,
			MinCount:   override.MinCount,
		})
	}

	return rules, nil
}

// nowUTC is swapped in tests to keep recorded timestamps deterministic
var nowUTC = func() time.Time { return time.Now().UTC() }
