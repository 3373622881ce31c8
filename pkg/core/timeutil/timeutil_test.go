package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
)

func TestParseTimeToMinutes(t *testing.T) {
	min, err := ParseTimeToMinutes("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, min)

	min, err = ParseTimeToMinutes("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, min)

	min, err = ParseTimeToMinutes("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, min)
}

func TestParseTimeToMinutes_Invalid(t *testing.T) {
	invalid := []string{"", "24:00", "12:60", "9:00", "ab:cd", "12-30", "12:345", "00:0a", "1a:00", "+1:00", " 9:00"}
	for _, s := range invalid {
		_, err := ParseTimeToMinutes(s)
		assert.Error(t, err, "expected %q to be rejected", s)
	}
}

func TestSlotKey_RollsPastMidnight(t *testing.T) {
	assert.Equal(t, "2025-03-10T09:00", SlotKey("2025-03-10", 9*60))
	assert.Equal(t, "2025-03-11T01:00", SlotKey("2025-03-10", 25*60))
	assert.Equal(t, "2025-03-11T00:00", SlotKey("2025-03-10", 24*60))
}

func TestWeekdayName(t *testing.T) {
	name, err := WeekdayName("2025-03-10") // a Monday
	require.NoError(t, err)
	assert.Equal(t, "monday", name)
}

func TestResolveShiftRange_ExplicitEnd(t *testing.T) {
	r, ok := ResolveShiftRange(model.Shift{
		ID: "s1", DateKey: "2025-03-10", StartTime: "09:00", EndTime: "17:00",
	}, model.ScheduleSettings{})
	require.True(t, ok)
	assert.Equal(t, 9*60, r.StartMin)
	assert.Equal(t, 17*60, r.EndMin)
	assert.Equal(t, model.PositionUnknown, r.Position)
}

func TestResolveShiftRange_CrossMidnight(t *testing.T) {
	r, ok := ResolveShiftRange(model.Shift{
		ID: "s1", DateKey: "2025-03-10", StartTime: "22:00", EndTime: "02:00",
	}, model.ScheduleSettings{})
	require.True(t, ok)
	assert.Equal(t, 22*60, r.StartMin)
	assert.Equal(t, 26*60, r.EndMin)
}

func TestResolveShiftRange_ClosingFallback(t *testing.T) {
	settings := model.ScheduleSettings{
		ClosingTime:          "21:00",
		ClosingOffsetMinutes: 30,
		WeekdayOverrides: map[string]model.DayHours{
			"monday": {ClosingTime: "23:00"},
		},
	}

	// Monday uses the weekday override
	r, ok := ResolveShiftRange(model.Shift{
		ID: "s1", DateKey: "2025-03-10", StartTime: "18:00",
	}, settings)
	require.True(t, ok)
	assert.Equal(t, 23*60+30, r.EndMin)

	// Tuesday falls back to the week-level closing time
	r, ok = ResolveShiftRange(model.Shift{
		ID: "s2", DateKey: "2025-03-11", StartTime: "18:00",
	}, settings)
	require.True(t, ok)
	assert.Equal(t, 21*60+30, r.EndMin)
}

func TestResolveShiftRange_ClosingBeforeStartRollsToNextDay(t *testing.T) {
	// Start 23:00, closing 01:00 next morning
	r, ok := ResolveShiftRange(model.Shift{
		ID: "s1", DateKey: "2025-03-10", StartTime: "23:00",
	}, model.ScheduleSettings{ClosingTime: "01:00"})
	require.True(t, ok)
	assert.Equal(t, 25*60, r.EndMin)
}

func TestResolveShiftRange_MissingStart(t *testing.T) {
	_, ok := ResolveShiftRange(model.Shift{ID: "s1", DateKey: "2025-03-10"}, model.ScheduleSettings{})
	assert.False(t, ok)
}

func TestNormalizeBucketMinutes(t *testing.T) {
	assert.Equal(t, 60, NormalizeBucketMinutes(0))
	assert.Equal(t, 60, NormalizeBucketMinutes(-15))
	assert.Equal(t, 30, NormalizeBucketMinutes(30.9))
	assert.Equal(t, 45, NormalizeBucketMinutes(45))
}
