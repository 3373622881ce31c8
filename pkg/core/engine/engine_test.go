package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
)

func fullInput() *model.EngineInput {
	return &model.EngineInput{
		UnitID:    "unit-1",
		WeekStart: "2025-03-10",
		DateKeys: []string{
			"2025-03-10", "2025-03-11", "2025-03-12", "2025-03-13",
			"2025-03-14", "2025-03-15", "2025-03-16",
		},
		Users: []model.User{
			{ID: "u1", Name: "Anna", Active: true},
			{ID: "u2", Name: "Bence", Active: true},
		},
		Positions: []model.Position{{ID: "bar", Name: "Bar"}},
		Shifts: []model.Shift{
			{ID: "s1", UserID: "u1", UnitID: "unit-1", DateKey: "2025-03-10",
				StartTime: "09:00", EndTime: "12:00", PositionID: "bar"},
			{ID: "s2", UserID: "u2", UnitID: "unit-1", DateKey: "2025-03-10",
				StartTime: "15:00", EndTime: "17:00", PositionID: "bar"},
		},
		Rules: model.Ruleset{
			BucketMinutes: 60,
			MinCoverage: []model.MinCoverageRule{
				{PositionID: "bar", DateKeys: []string{"2025-03-10"},
					StartTime: "09:00", EndTime: "17:00", MinCount: 1},
			},
			MaxHoursDay: &model.MaxHoursRule{MaxHours: 12},
			MinRest:     &model.MinRestRule{MinHours: 8},
		},
	}
}

func TestRun_Deterministic(t *testing.T) {
	input := fullInput()

	first := Run(input)
	second := Run(input)

	assert.Equal(t, first, second)
}

func TestRun_PipelineOutputs(t *testing.T) {
	result := Run(fullInput())

	// 09:00-12:00 and 15:00-17:00 are covered, 12:00-15:00 is the gap
	assert.Equal(t, 1, result.CapacityMap["2025-03-10T09:00"]["bar"])
	assert.NotContains(t, result.CapacityMap, "2025-03-10T12:00")

	require.NotEmpty(t, result.Violations)
	assert.Equal(t, model.ConstraintMinCoverage, result.Violations[0].ConstraintID)

	require.NotEmpty(t, result.Suggestions)
	assert.Len(t, result.Trace, 3)
}

func TestRun_EmptyInputIsTotal(t *testing.T) {
	input := &model.EngineInput{
		UnitID:    "unit-1",
		WeekStart: "2025-03-10",
		DateKeys: []string{
			"2025-03-10", "2025-03-11", "2025-03-12", "2025-03-13",
			"2025-03-14", "2025-03-15", "2025-03-16",
		},
	}

	result := Run(input)

	assert.Empty(t, result.CapacityMap)
	assert.Empty(t, result.Violations)
	assert.Empty(t, result.Suggestions)
}
