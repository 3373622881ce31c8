package db

import "context"

// RosterStore defines the interface for roster database operations
type RosterStore interface {
	GetUsers(ctx context.Context) ([]UserRecord, error)
	GetPositions(ctx context.Context) ([]PositionRecord, error)
	GetShifts(ctx context.Context, unitID string, dateKeys []string) ([]ShiftRecord, error)
	ReplaceShifts(ctx context.Context, unitID string, dateKeys []string, shifts []ShiftRecord) error
	UpsertUsers(ctx context.Context, users []UserRecord) error
	UpsertPositions(ctx context.Context, positions []PositionRecord) error
}

// DecisionStore defines the interface for suggestion decision operations
type DecisionStore interface {
	GetDecisions(ctx context.Context, unitID, weekStart string) ([]DecisionRecord, error)
	UpsertDecision(ctx context.Context, decision DecisionRecord) error
}

// LedgerStore defines the interface for the applied-suggestion ledger.
// ApplySuggestionTx atomically checks the ledger, writes the modified week and
// records the entry; it returns false without writing when the suggestion id
// is already present.
type LedgerStore interface {
	GetAppliedSuggestion(ctx context.Context, suggestionID string) (*AppliedSuggestion, error)
	ApplySuggestionTx(ctx context.Context, entry AppliedSuggestion, dateKeys []string, shifts []ShiftRecord, decision DecisionRecord) (bool, error)
}
