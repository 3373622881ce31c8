package db

import "time"

// UserRecord represents a database staff member record
type UserRecord struct {
	ID      string
	Name    string
	Active  bool
	UnitIDs []string
}

// PositionRecord represents a database position record
type PositionRecord struct {
	ID   string
	Name string
}

// ShiftRecord represents a database shift record. Times are stored as HH:MM
// strings and the date as a YYYY-MM-DD key, matching the engine input.
type ShiftRecord struct {
	ID         string
	UnitID     string
	UserID     string
	DateKey    string
	StartTime  string
	EndTime    string
	PositionID string
	IsDayOff   bool
}

// DecisionRecord represents a recorded accept/reject decision for a suggestion
type DecisionRecord struct {
	ID                 string
	UnitID             string
	WeekStart          string
	SuggestionID       string
	LegacySuggestionID string
	Decision           string
	Source             string
	Reason             string
	DecidedAt          time.Time
}

// AppliedSuggestion is a ledger entry recording that a suggestion's actions
// were written to the roster. The suggestion id is the canonical signature, so
// re-applying the same suggestion is detected regardless of action order.
type AppliedSuggestion struct {
	SuggestionID   string
	UnitID         string
	WeekStart      string
	Outcome        string
	AppliedActions []string
	AppliedAt      time.Time
}
