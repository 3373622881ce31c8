// Package rosterfile loads a complete week snapshot from a YAML file, so a
// roster can be analyzed without a database or spreadsheet behind it.
package rosterfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/timeutil"
)

// File is the YAML document shape
type File struct {
	UnitID    string       `yaml:"unitId"`
	WeekStart string       `yaml:"weekStart"`
	Users     []UserEntry  `yaml:"users"`
	Positions []Position   `yaml:"positions,omitempty"`
	Shifts    []ShiftEntry `yaml:"shifts"`
	Settings  Settings     `yaml:"settings,omitempty"`
	Rules     Rules        `yaml:"rules,omitempty"`
}

// UserEntry is one staff member row
type UserEntry struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name,omitempty"`
	Active  *bool    `yaml:"active,omitempty"` // unset means active
	UnitIDs []string `yaml:"unitIds,omitempty"`
}

// Position is one position row
type Position struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
}

// ShiftEntry is one shift row
type ShiftEntry struct {
	ID         string `yaml:"id,omitempty"`
	UserID     string `yaml:"userId"`
	UnitID     string `yaml:"unitId,omitempty"`
	DateKey    string `yaml:"dateKey"`
	StartTime  string `yaml:"startTime,omitempty"`
	EndTime    string `yaml:"endTime,omitempty"`
	PositionID string `yaml:"positionId,omitempty"`
	DayOff     bool   `yaml:"dayOff,omitempty"`
}

// Settings mirrors the schedule settings
type Settings struct {
	OpeningTime          string              `yaml:"openingTime,omitempty"`
	ClosingTime          string              `yaml:"closingTime,omitempty"`
	ClosingOffsetMinutes int                 `yaml:"closingOffsetMinutes,omitempty"`
	WeekdayHours         map[string]DayHours `yaml:"weekdayHours,omitempty"`
}

// DayHours overrides one weekday's hours
type DayHours struct {
	OpeningTime string `yaml:"openingTime,omitempty"`
	ClosingTime string `yaml:"closingTime,omitempty"`
}

// Rules mirrors the configured ruleset
type Rules struct {
	BucketMinutes int            `yaml:"bucketMinutes,omitempty"`
	MinCoverage   []CoverageRule `yaml:"minCoverage,omitempty"`
	MaxHoursDay   *float64       `yaml:"maxHoursPerDay,omitempty"`
	MinRestHours  *float64       `yaml:"minRestHours,omitempty"`
}

// CoverageRule is one minimum-coverage requirement. Empty dateKeys means the
// whole week.
type CoverageRule struct {
	PositionID string   `yaml:"positionId"`
	DateKeys   []string `yaml:"dateKeys,omitempty"`
	StartTime  string   `yaml:"startTime"`
	EndTime    string   `yaml:"endTime"`
	MinCount   int      `yaml:"minCount"`
}

// Load reads and converts a roster file into a validated engine input
func Load(path string) (*model.EngineInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}

	return Convert(&file)
}

// Convert turns a parsed file into a validated engine input
func Convert(file *File) (*model.EngineInput, error) {
	if _, err := timeutil.ParseDateKey(file.WeekStart); err != nil {
		return nil, fmt.Errorf("invalid weekStart: %w", err)
	}

	dateKeys := make([]string, 7)
	for i := range dateKeys {
		key, err := timeutil.AddDays(file.WeekStart, i)
		if err != nil {
			return nil, err
		}
		dateKeys[i] = key
	}

	input := &model.EngineInput{
		UnitID:    file.UnitID,
		WeekStart: file.WeekStart,
		DateKeys:  dateKeys,
		Users:     make([]model.User, 0, len(file.Users)),
		Positions: make([]model.Position, 0, len(file.Positions)),
		Shifts:    make([]model.Shift, 0, len(file.Shifts)),
		Settings: model.ScheduleSettings{
			OpeningTime:          file.Settings.OpeningTime,
			ClosingTime:          file.Settings.ClosingTime,
			ClosingOffsetMinutes: file.Settings.ClosingOffsetMinutes,
		},
		Rules: model.Ruleset{BucketMinutes: file.Rules.BucketMinutes},
	}

	if len(file.Settings.WeekdayHours) > 0 {
		input.Settings.WeekdayOverrides = make(map[string]model.DayHours, len(file.Settings.WeekdayHours))
		for day, hours := range file.Settings.WeekdayHours {
			input.Settings.WeekdayOverrides[day] = model.DayHours{
				OpeningTime: hours.OpeningTime,
				ClosingTime: hours.ClosingTime,
			}
		}
	}

	for _, u := range file.Users {
		active := u.Active == nil || *u.Active
		input.Users = append(input.Users, model.User{
			ID:      u.ID,
			Name:    u.Name,
			Active:  active,
			UnitIDs: u.UnitIDs,
		})
	}

	for _, p := range file.Positions {
		input.Positions = append(input.Positions, model.Position{ID: p.ID, Name: p.Name})
	}

	for i, s := range file.Shifts {
		id := s.ID
		if id == "" {
			id = fmt.Sprintf("shift-%d", i+1)
		}
		unitID := s.UnitID
		if unitID == "" {
			unitID = file.UnitID
		}
		input.Shifts = append(input.Shifts, model.Shift{
			ID:         id,
			UserID:     s.UserID,
			UnitID:     unitID,
			DateKey:    s.DateKey,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			PositionID: s.PositionID,
			IsDayOff:   s.DayOff,
		})
	}

	for _, rule := range file.Rules.MinCoverage {
		ruleDates := rule.DateKeys
		if len(ruleDates) == 0 {
			ruleDates = dateKeys
		}
		input.Rules.MinCoverage = append(input.Rules.MinCoverage, model.MinCoverageRule{
			PositionID: rule.PositionID,
			DateKeys:   ruleDates,
			StartTime:  rule.StartTime,
			EndTime:    rule.EndTime,
			MinCount:   rule.MinCount,
		})
	}
	if file.Rules.MaxHoursDay != nil {
		input.Rules.MaxHoursDay = &model.MaxHoursRule{MaxHours: *file.Rules.MaxHoursDay}
	}
	if file.Rules.MinRestHours != nil {
		input.Rules.MinRest = &model.MinRestRule{MinHours: *file.Rules.MinRestHours}
	}

	if err := model.ValidateInput(input); err != nil {
		return nil, fmt.Errorf("roster file validation failed: %w", err)
	}

	return input, nil
}
