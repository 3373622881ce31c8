package rosterfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oliverngu/roster-advisor/pkg/core/engine"
	"github.com/Oliverngu/roster-advisor/pkg/core/model"
)

const sampleRoster = `
unitId: unit-1
weekStart: "2025-03-10"
users:
  - id: u1
    name: Anna
  - id: u2
    name: Bence
    active: false
positions:
  - id: bar
    name: Bar
shifts:
  - id: s1
    userId: u1
    dateKey: "2025-03-10"
    startTime: "09:00"
    endTime: "12:00"
    positionId: bar
  - userId: u1
    dateKey: "2025-03-11"
    dayOff: true
settings:
  closingTime: "22:00"
rules:
  bucketMinutes: 60
  minCoverage:
    - positionId: bar
      dateKeys: ["2025-03-10"]
      startTime: "09:00"
      endTime: "12:00"
      minCount: 1
  maxHoursPerDay: 10
`

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	input, err := Load(writeRoster(t, sampleRoster))
	require.NoError(t, err)

	assert.Equal(t, "unit-1", input.UnitID)
	assert.Len(t, input.DateKeys, 7)
	assert.Equal(t, "2025-03-16", input.DateKeys[6])

	require.Len(t, input.Users, 2)
	assert.True(t, input.Users[0].Active, "unset active defaults to true")
	assert.False(t, input.Users[1].Active)

	require.Len(t, input.Shifts, 2)
	// Shifts without an id or unit inherit generated values
	assert.Equal(t, "shift-2", input.Shifts[1].ID)
	assert.Equal(t, "unit-1", input.Shifts[1].UnitID)
	assert.True(t, input.Shifts[1].IsDayOff)

	require.NotNil(t, input.Rules.MaxHoursDay)
	assert.InDelta(t, 10, input.Rules.MaxHoursDay.MaxHours, 0.001)
}

func TestLoad_RunsThroughEngine(t *testing.T) {
	input, err := Load(writeRoster(t, sampleRoster))
	require.NoError(t, err)

	result := engine.Run(input)

	// s1 satisfies the only coverage rule, so the week is clean
	assert.Empty(t, result.Violations)
	assert.Equal(t, 1, result.CapacityMap["2025-03-10T09:00"]["bar"])
}

func TestConvert_CoverageDefaultsToWholeWeek(t *testing.T) {
	input, err := Convert(&File{
		UnitID:    "unit-1",
		WeekStart: "2025-03-10",
		Rules: Rules{
			MinCoverage: []CoverageRule{
				{PositionID: "bar", StartTime: "10:00", EndTime: "11:00", MinCount: 1},
			},
		},
	})
	require.NoError(t, err)

	require.Len(t, input.Rules.MinCoverage, 1)
	assert.Len(t, input.Rules.MinCoverage[0].DateKeys, 7)
}

func TestLoad_InvalidWeekStart(t *testing.T) {
	_, err := Load(writeRoster(t, "unitId: unit-1\nweekStart: nope\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid weekStart")
}

func TestConvert_MissingUnitFailsValidation(t *testing.T) {
	_, err := Convert(&File{WeekStart: "2025-03-10"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestConvert_ModelTypes(t *testing.T) {
	input, err := Convert(&File{
		UnitID:    "unit-1",
		WeekStart: "2025-03-10",
		Settings: Settings{
			WeekdayHours: map[string]DayHours{"friday": {ClosingTime: "23:30"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.DayHours{ClosingTime: "23:30"}, input.Settings.WeekdayOverrides["friday"])
}
