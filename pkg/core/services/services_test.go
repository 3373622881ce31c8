package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Oliverngu/roster-advisor/internal/config"
	"github.com/Oliverngu/roster-advisor/pkg/clients/sheetsclient"
	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/db"
)

// mockStore implements the service store interfaces for testing
type mockStore struct {
	users     []db.UserRecord
	positions []db.PositionRecord
	shifts    []db.ShiftRecord
	decisions []db.DecisionRecord
	applied   map[string]*db.AppliedSuggestion

	appliedEntries    []db.AppliedSuggestion
	appliedShifts     []db.ShiftRecord
	upsertedDecisions []db.DecisionRecord
	replacedShifts    []db.ShiftRecord
	upsertedUsers     []db.UserRecord
	upsertedPositions []db.PositionRecord

	getShiftsErr error
	applyErr     error
}

func (m *mockStore) GetUsers(ctx context.Context) ([]db.UserRecord, error) {
	return m.users, nil
}

func (m *mockStore) GetPositions(ctx context.Context) ([]db.PositionRecord, error) {
	return m.positions, nil
}

func (m *mockStore) GetShifts(ctx context.Context, unitID string, dateKeys []string) ([]db.ShiftRecord, error) {
	if m.getShiftsErr != nil {
		return nil, m.getShiftsErr
	}
	return m.shifts, nil
}

func (m *mockStore) GetDecisions(ctx context.Context, unitID, weekStart string) ([]db.DecisionRecord, error) {
	return m.decisions, nil
}

func (m *mockStore) GetAppliedSuggestion(ctx context.Context, suggestionID string) (*db.AppliedSuggestion, error) {
	return m.applied[suggestionID], nil
}

func (m *mockStore) ApplySuggestionTx(ctx context.Context, entry db.AppliedSuggestion, dateKeys []string, shifts []db.ShiftRecord, decision db.DecisionRecord) (bool, error) {
	if m.applyErr != nil {
		return false, m.applyErr
	}
	m.appliedEntries = append(m.appliedEntries, entry)
	m.appliedShifts = shifts
	m.upsertedDecisions = append(m.upsertedDecisions, decision)
	return true, nil
}

func (m *mockStore) UpsertDecision(ctx context.Context, decision db.DecisionRecord) error {
	m.upsertedDecisions = append(m.upsertedDecisions, decision)
	return nil
}

func (m *mockStore) UpsertUsers(ctx context.Context, users []db.UserRecord) error {
	m.upsertedUsers = append(m.upsertedUsers, users...)
	return nil
}

func (m *mockStore) UpsertPositions(ctx context.Context, positions []db.PositionRecord) error {
	m.upsertedPositions = append(m.upsertedPositions, positions...)
	return nil
}

func (m *mockStore) ReplaceShifts(ctx context.Context, unitID string, dateKeys []string, shifts []db.ShiftRecord) error {
	m.replacedShifts = shifts
	return nil
}

// mockRosterClient implements RosterClient for testing
type mockRosterClient struct {
	roster  *sheetsclient.RosterImport
	listErr error
}

func (m *mockRosterClient) ListRoster(cfg *config.Config) (*sheetsclient.RosterImport, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.roster, nil
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultUnitID: "unit-1",
		BucketMinutes: 60,
		Coverage: []config.CoverageOverride{
			{PositionID: "bar", RRule: "FREQ=WEEKLY;BYDAY=MO",
				StartTime: "10:00", EndTime: "11:00", MinCount: 1},
		},
	}
}

func testStore() *mockStore {
	return &mockStore{
		users:     []db.UserRecord{{ID: "u1", Name: "Anna", Active: true}},
		positions: []db.PositionRecord{{ID: "bar", Name: "Bar"}},
		applied:   map[string]*db.AppliedSuggestion{},
	}
}

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	previous := nowUTC
	nowUTC = func() time.Time { return now }
	t.Cleanup(func() { nowUTC = previous })
	return now
}

func TestAnalyzeWeek_ExpandsCoverageFromRRule(t *testing.T) {
	store := testStore()

	// 2025-03-10 is a Monday, so the weekly Monday rule lands on the
	// first day of the week
	result, err := AnalyzeWeek(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.NoError(t, err)

	require.Len(t, result.Input.Rules.MinCoverage, 1)
	assert.Equal(t, []string{"2025-03-10"}, result.Input.Rules.MinCoverage[0].DateKeys)

	require.NotEmpty(t, result.Result.Violations)
	assert.Equal(t, model.ConstraintMinCoverage, result.Result.Violations[0].ConstraintID)
}

func TestAnalyzeWeek_AppliesConfiguredHourRules(t *testing.T) {
	store := testStore()
	store.shifts = []db.ShiftRecord{
		{ID: "s1", UnitID: "unit-1", UserID: "u1", DateKey: "2025-03-11",
			StartTime: "08:00", EndTime: "20:00", PositionID: "bar"},
	}

	cfg := testConfig()
	cfg.Coverage = nil
	maxHours := 10.5
	cfg.MaxHoursPerDay = &maxHours

	result, err := AnalyzeWeek(context.Background(), store, cfg, zap.NewNop(), "unit-1", "2025-03-10")
	require.NoError(t, err)

	require.NotNil(t, result.Input.Rules.MaxHoursDay)
	assert.InDelta(t, 10.5, result.Input.Rules.MaxHoursDay.MaxHours, 0.001)
	require.Len(t, result.Result.Violations, 1)
	assert.Equal(t, model.ConstraintMaxHours, result.Result.Violations[0].ConstraintID)
}

func TestAnalyzeWeek_StoreError(t *testing.T) {
	store := testStore()
	store.getShiftsErr = errors.New("boom")

	_, err := AnalyzeWeek(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch shifts")
}

func TestAnalyzeWeek_InvalidWeekStart(t *testing.T) {
	_, err := AnalyzeWeek(context.Background(), testStore(), testConfig(), zap.NewNop(), "unit-1", "10/03/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid week start")
}

func TestBuildAssistantView_OverlaysDecisions(t *testing.T) {
	store := testStore()

	// First pass to learn the signature of the generated suggestion
	response, err := BuildAssistantView(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, response.Suggestions, 1)
	signature := response.Suggestions[0].Signature

	store.decisions = []db.DecisionRecord{
		{SuggestionID: signature, Decision: string(model.DecisionRejected)},
	}

	response, err = BuildAssistantView(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, response.Suggestions, 1)
	assert.Equal(t, model.DecisionRejected, response.Suggestions[0].DecisionState)
}

func TestAcceptSuggestion_PersistsWeekAndDecision(t *testing.T) {
	now := fixedNow(t)
	store := testStore()

	view, err := BuildAssistantView(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, view.Suggestions, 1)
	signature := view.Suggestions[0].Signature

	result, err := AcceptSuggestion(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10", signature)
	require.NoError(t, err)

	assert.True(t, result.Persisted)
	assert.False(t, result.AlreadyApplied)
	assert.Equal(t, signature, result.Signature)

	require.Len(t, store.appliedEntries, 1)
	assert.Equal(t, signature, store.appliedEntries[0].SuggestionID)
	assert.Equal(t, now, store.appliedEntries[0].AppliedAt)
	require.NotEmpty(t, store.appliedShifts)
	assert.Equal(t, "unit-1", store.appliedShifts[0].UnitID)

	require.Len(t, store.upsertedDecisions, 1)
	assert.Equal(t, string(model.DecisionAccepted), store.upsertedDecisions[0].Decision)
}

func TestAcceptSuggestion_AlreadyAppliedIsNoOp(t *testing.T) {
	store := testStore()

	view, err := BuildAssistantView(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.NoError(t, err)
	signature := view.Suggestions[0].Signature

	store.applied[signature] = &db.AppliedSuggestion{SuggestionID: signature, Outcome: "accepted"}

	result, err := AcceptSuggestion(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10", signature)
	require.NoError(t, err)

	assert.True(t, result.AlreadyApplied)
	assert.Empty(t, store.appliedEntries)
}

func TestAcceptSuggestion_AcceptsLegacyID(t *testing.T) {
	store := testStore()

	view, err := BuildAssistantView(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.NoError(t, err)
	legacyID := view.Suggestions[0].ID

	result, err := AcceptSuggestion(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10", legacyID)
	require.NoError(t, err)

	assert.True(t, result.Persisted)
	assert.NotEqual(t, legacyID, result.Signature, "ledger is keyed by the canonical signature")
}

func TestAcceptSuggestion_UnknownID(t *testing.T) {
	store := testStore()

	_, err := AcceptSuggestion(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in current analysis")
}

func TestRecordDecision(t *testing.T) {
	now := fixedNow(t)
	store := testStore()

	view, err := BuildAssistantView(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, view.Suggestions, 1)
	signature := view.Suggestions[0].Signature

	record, err := RecordDecision(context.Background(), store, testConfig(), zap.NewNop(), RecordDecisionArgs{
		UnitID:       "unit-1",
		WeekStart:    "2025-03-10",
		SuggestionID: signature,
		Decision:     model.DecisionRejected,
		Source:       "cli",
		Reason:       "prefer overtime",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, now, record.DecidedAt)
	require.Len(t, store.upsertedDecisions, 1)
	assert.Equal(t, "prefer overtime", store.upsertedDecisions[0].Reason)
}

func TestRecordDecision_LegacyIDStoresSignature(t *testing.T) {
	store := testStore()

	view, err := BuildAssistantView(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, view.Suggestions, 1)
	legacyID := view.Suggestions[0].ID
	signature := view.Suggestions[0].Signature

	record, err := RecordDecision(context.Background(), store, testConfig(), zap.NewNop(), RecordDecisionArgs{
		UnitID:       "unit-1",
		WeekStart:    "2025-03-10",
		SuggestionID: legacyID,
		Decision:     model.DecisionRejected,
		Source:       "cli",
	})
	require.NoError(t, err)

	// The stored decision is keyed by the canonical signature so the
	// assistant overlay picks it up
	assert.Equal(t, signature, record.SuggestionID)
	assert.Equal(t, legacyID, record.LegacySuggestionID)

	store.decisions = store.upsertedDecisions
	view, err = BuildAssistantView(context.Background(), store, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, view.Suggestions, 1)
	assert.Equal(t, model.DecisionRejected, view.Suggestions[0].DecisionState)
}

func TestRecordDecision_RejectsPending(t *testing.T) {
	_, err := RecordDecision(context.Background(), testStore(), testConfig(), zap.NewNop(), RecordDecisionArgs{
		UnitID:       "unit-1",
		WeekStart:    "2025-03-10",
		SuggestionID: "sig-1",
		Decision:     model.DecisionPending,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be accepted or rejected")
}

func TestRecordDecision_UnknownSuggestion(t *testing.T) {
	_, err := RecordDecision(context.Background(), testStore(), testConfig(), zap.NewNop(), RecordDecisionArgs{
		UnitID:       "unit-1",
		WeekStart:    "2025-03-10",
		SuggestionID: "nope",
		Decision:     model.DecisionRejected,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in current analysis")
}

func TestImportRoster_FiltersWeekAndUnit(t *testing.T) {
	store := testStore()
	client := &mockRosterClient{roster: &sheetsclient.RosterImport{
		Users:     []db.UserRecord{{ID: "u1", Name: "Anna", Active: true}},
		Positions: []db.PositionRecord{{ID: "bar", Name: "Bar"}},
		Shifts: []db.ShiftRecord{
			{ID: "s1", UserID: "u1", DateKey: "2025-03-10", StartTime: "09:00", EndTime: "17:00"},
			{ID: "s2", UserID: "u1", UnitID: "unit-2", DateKey: "2025-03-10", StartTime: "09:00", EndTime: "17:00"},
			{ID: "s3", UserID: "u1", UnitID: "unit-1", DateKey: "2025-04-01", StartTime: "09:00", EndTime: "17:00"},
		},
	}}

	result, err := ImportRoster(context.Background(), store, client, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Shifts)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, store.replacedShifts, 1)
	// A row without a unit is claimed by the importing unit
	assert.Equal(t, "unit-1", store.replacedShifts[0].UnitID)
	assert.Len(t, store.upsertedUsers, 1)
	assert.Len(t, store.upsertedPositions, 1)
}

func TestImportRoster_ClientError(t *testing.T) {
	client := &mockRosterClient{listErr: errors.New("no sheet")}

	_, err := ImportRoster(context.Background(), testStore(), client, testConfig(), zap.NewNop(), "unit-1", "2025-03-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list roster")
}
