package sheetsclient

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Oliverngu/roster-advisor/internal/config"
	"github.com/Oliverngu/roster-advisor/pkg/db"
)

// Expected column names in the roster sheet
var rosterFields = []string{
	"Shift ID",
	"User ID",
	"User name",
	"Active",
	"Unit ID",
	"Position ID",
	"Position name",
	"Date",
	"Start",
	"End",
	"Day off",
}

// RosterImport is the parsed content of one roster sheet
type RosterImport struct {
	Users     []db.UserRecord
	Positions []db.PositionRecord
	Shifts    []db.ShiftRecord
}

// ListRoster retrieves and parses the roster from the configured spreadsheet
func (c *Client) ListRoster(cfg *config.Config) (*RosterImport, error) {
	if cfg.RosterSheetID == "" || cfg.RosterSheetTab == "" {
		return nil, fmt.Errorf("rosterSheetID and rosterSheetTab must be configured")
	}

	values, err := c.GetValues(cfg.RosterSheetID, cfg.RosterSheetTab)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	roster, err := ParseRoster(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	return roster, nil
}

// ParseRoster converts raw spreadsheet data into roster records. Each row is
// one shift; users and positions are collected from the rows they appear on.
func ParseRoster(raw [][]interface{}) (*RosterImport, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	// Build field index map from header row
	fieldIndexes := make(map[string]int)
	headerRow := raw[0]

	for _, field := range rosterFields {
		index := -1
		for i, cell := range headerRow {
			if cellStr, ok := cell.(string); ok && cellStr == field {
				index = i
				break
			}
		}
		if index == -1 {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
		fieldIndexes[field] = index
	}

	getField := func(field string, row []interface{}) string {
		index, ok := fieldIndexes[field]
		if !ok {
			return ""
		}
		if index >= len(row) {
			return ""
		}
		if str, ok := row[index].(string); ok {
			return strings.TrimSpace(str)
		}
		return ""
	}

	users := make(map[string]db.UserRecord)
	unitsByUser := make(map[string]map[string]bool)
	positions := make(map[string]db.PositionRecord)
	var shifts []db.ShiftRecord

	for i := 1; i < len(raw); i++ {
		row := raw[i]

		userID := getField("User ID", row)
		// Skip empty rows
		if userID == "" {
			continue
		}

		date := getField("Date", row)
		if date == "" {
			return nil, fmt.Errorf("row %d: missing date for user %s", i+1, userID)
		}

		unitID := getField("Unit ID", row)
		positionID := getField("Position ID", row)

		user := users[userID]
		user.ID = userID
		if name := getField("User name", row); name != "" {
			user.Name = name
		}
		user.Active = parseActive(getField("Active", row))
		users[userID] = user

		if unitID != "" {
			if unitsByUser[userID] == nil {
				unitsByUser[userID] = make(map[string]bool)
			}
			unitsByUser[userID][unitID] = true
		}

		if positionID != "" {
			position := positions[positionID]
			position.ID = positionID
			if name := getField("Position name", row); name != "" {
				position.Name = name
			}
			positions[positionID] = position
		}

		shiftID := getField("Shift ID", row)
		if shiftID == "" {
			shiftID = fmt.Sprintf("%s-%s-%s", userID, date, getField("Start", row))
		}

		shifts = append(shifts, db.ShiftRecord{
			ID:         shiftID,
			UnitID:     unitID,
			UserID:     userID,
			DateKey:    date,
			StartTime:  getField("Start", row),
			EndTime:    getField("End", row),
			PositionID: positionID,
			IsDayOff:   parseFlag(getField("Day off", row), false),
		})
	}

	result := &RosterImport{
		Users:     make([]db.UserRecord, 0, len(users)),
		Positions: make([]db.PositionRecord, 0, len(positions)),
		Shifts:    shifts,
	}

	for id, user := range users {
		for unitID := range unitsByUser[id] {
			user.UnitIDs = append(user.UnitIDs, unitID)
		}
		sort.Strings(user.UnitIDs)
		result.Users = append(result.Users, user)
	}
	sort.Slice(result.Users, func(i, j int) bool { return result.Users[i].ID < result.Users[j].ID })

	for _, position := range positions {
		result.Positions = append(result.Positions, position)
	}
	sort.Slice(result.Positions, func(i, j int) bool { return result.Positions[i].ID < result.Positions[j].ID })

	return result, nil
}

// parseActive treats anything but an explicit no as active
func parseActive(value string) bool {
	switch strings.ToLower(value) {
	case "no", "false", "inactive", "0":
		return false
	default:
		return true
	}
}

// parseFlag reports whether the value is an explicit yes
func parseFlag(value string, defaultValue bool) bool {
	switch strings.ToLower(value) {
	case "yes", "true", "1":
		return true
	case "no", "false", "0":
		return false
	default:
		return defaultValue
	}
}
