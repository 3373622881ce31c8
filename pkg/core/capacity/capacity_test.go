package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
)

func weekInput(shifts ...model.Shift) *model.EngineInput {
	return &model.EngineInput{
		UnitID:    "unit-1",
		WeekStart: "2025-03-10",
		DateKeys: []string{
			"2025-03-10", "2025-03-11", "2025-03-12", "2025-03-13",
			"2025-03-14", "2025-03-15", "2025-03-16",
		},
		Shifts: shifts,
		Rules:  model.Ruleset{BucketMinutes: 60},
	}
}

func TestCompute_SingleShift(t *testing.T) {
	input := weekInput(model.Shift{
		ID: "s1", UserID: "u1", UnitID: "unit-1", DateKey: "2025-03-10",
		StartTime: "09:00", EndTime: "11:00", PositionID: "bar",
	})

	result := Compute(input)

	assert.Equal(t, 1, result.Capacity["2025-03-10T09:00"]["bar"])
	assert.Equal(t, 1, result.Capacity["2025-03-10T10:00"]["bar"])
	assert.NotContains(t, result.Capacity, "2025-03-10T11:00")
}

func TestCompute_CrossMidnight(t *testing.T) {
	input := weekInput(model.Shift{
		ID: "s1", UserID: "u1", UnitID: "unit-1", DateKey: "2025-03-10",
		StartTime: "22:00", EndTime: "02:00", PositionID: "bar",
	})

	result := Compute(input)

	assert.Equal(t, 1, result.Capacity["2025-03-10T23:00"]["bar"])
	assert.Equal(t, 1, result.Capacity["2025-03-11T01:00"]["bar"])
	assert.NotContains(t, result.Capacity, "2025-03-11T02:00")

	r, ok := result.ShiftRanges["s1"]
	require.True(t, ok)
	assert.Equal(t, 26*60, r.EndMin)
}

func TestCompute_UnknownPositionSentinel(t *testing.T) {
	input := weekInput(model.Shift{
		ID: "s1", UserID: "u1", UnitID: "unit-1", DateKey: "2025-03-10",
		StartTime: "09:00", EndTime: "10:00",
	})

	result := Compute(input)

	assert.Equal(t, 1, result.Capacity["2025-03-10T09:00"][model.PositionUnknown])
}

func TestCompute_SkipsDayOffAndUnresolvable(t *testing.T) {
	input := weekInput(
		model.Shift{ID: "off", UserID: "u1", UnitID: "unit-1", DateKey: "2025-03-10",
			StartTime: "09:00", EndTime: "17:00", PositionID: "bar", IsDayOff: true},
		model.Shift{ID: "nostart", UserID: "u2", UnitID: "unit-1", DateKey: "2025-03-10",
			EndTime: "17:00", PositionID: "bar"},
	)

	result := Compute(input)

	assert.Empty(t, result.Capacity)
	assert.Empty(t, result.ShiftRanges)
}

func TestCompute_UnitIsolation(t *testing.T) {
	input := weekInput(
		model.Shift{ID: "mine", UserID: "u1", UnitID: "unit-1", DateKey: "2025-03-10",
			StartTime: "09:00", EndTime: "10:00", PositionID: "bar"},
		model.Shift{ID: "other", UserID: "u2", UnitID: "unit-2", DateKey: "2025-03-10",
			StartTime: "09:00", EndTime: "10:00", PositionID: "bar"},
	)

	result := Compute(input)

	assert.Equal(t, 1, result.Capacity["2025-03-10T09:00"]["bar"])
	assert.NotContains(t, result.ShiftRanges, "other")
}

func TestCompute_OrderIndependent(t *testing.T) {
	a := model.Shift{ID: "s1", UserID: "u1", UnitID: "unit-1", DateKey: "2025-03-10",
		StartTime: "09:00", EndTime: "12:00", PositionID: "bar"}
	b := model.Shift{ID: "s2", UserID: "u2", UnitID: "unit-1", DateKey: "2025-03-10",
		StartTime: "10:00", EndTime: "13:00", PositionID: "bar"}

	first := Compute(weekInput(a, b))
	second := Compute(weekInput(b, a))

	assert.Equal(t, first.Capacity, second.Capacity)
	assert.Equal(t, 2, first.Capacity["2025-03-10T10:00"]["bar"])
}
