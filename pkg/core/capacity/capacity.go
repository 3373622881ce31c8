// Package capacity turns a week's shift list into per-bucket, per-position
// headcounts.
package capacity

import (
	"sort"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/timeutil"
)

// Result holds the capacity map plus the resolved time range of every shift
// that contributed to it.
type Result struct {
	Capacity    model.CapacityMap
	ShiftRanges map[string]model.ShiftRange
}

// Compute walks every resolvable, non-day-off shift of the input's unit in
// bucket-sized steps and counts heads per slot and position. Shifts are
// sorted first so iteration order never affects the output.
func Compute(input *model.EngineInput) Result {
	bucket := timeutil.NormalizeBucketMinutes(float64(input.Rules.BucketMinutes))

	shifts := sortedShifts(input.Shifts)

	result := Result{
		Capacity:    model.CapacityMap{},
		ShiftRanges: map[string]model.ShiftRange{},
	}

	for _, shift := range shifts {
		if shift.IsDayOff {
			continue
		}
		if shift.UnitID != "" && input.UnitID != "" && shift.UnitID != input.UnitID {
			continue
		}
		r, ok := timeutil.ResolveShiftRange(shift, input.Settings)
		if !ok {
			// No parseable start or resolvable end: contributes nothing
			continue
		}
		result.ShiftRanges[shift.ID] = r

		for min := r.StartMin; min < r.EndMin; min += bucket {
			key := timeutil.SlotKey(r.DateKey, min)
			slot := result.Capacity[key]
			if slot == nil {
				slot = map[string]int{}
				result.Capacity[key] = slot
			}
			slot[r.Position]++
		}
	}

	return result
}

// sortedShifts returns a copy ordered by dateKey, startTime, endTime, id, all
// ascending with missing values sorting as empty strings
func sortedShifts(shifts []model.Shift) []model.Shift {
	out := make([]model.Shift, len(shifts))
	copy(out, shifts)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DateKey != b.DateKey {
			return a.DateKey < b.DateKey
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if a.EndTime != b.EndTime {
			return a.EndTime < b.EndTime
		}
		return a.ID < b.ID
	})
	return out
}
