package suggest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/timeutil"
)

// Generate searches for one corrective edit per uncovered-position violation:
// first a move of an existing same-position shift, then a brand new shift for
// an eligible user. Other violation kinds are informational and yield nothing.
// A violation with no eligible candidate is silently skipped.
func Generate(input *model.EngineInput, capacity model.CapacityMap, ranges map[string]model.ShiftRange, violations []model.Violation) []model.Suggestion {
	search := newSearch(input, ranges)

	type candidate struct {
		suggestion model.Suggestion
		severity   model.Severity
		slot       string
	}
	var candidates []candidate

	for _, v := range violations {
		if v.ConstraintID != model.ConstraintMinCoverage || len(v.Affected.Slots) == 0 {
			continue
		}
		target, ok := parseTargetSlot(v.Affected.Slots[0], input.Rules.BucketMinutes, v.Affected.PositionID)
		if !ok {
			continue
		}

		suggestion, found := search.findMove(target)
		if !found {
			suggestion, found = search.findAdd(target)
		}
		if !found {
			continue
		}
		candidates = append(candidates, candidate{
			suggestion: suggestion,
			severity:   v.Severity,
			slot:       v.Affected.Slots[0],
		})
	}

	// Rank: severity desc, moves before adds, then target slot ascending
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.severity.Rank() != b.severity.Rank() {
			return a.severity.Rank() > b.severity.Rank()
		}
		if a.suggestion.Type != b.suggestion.Type {
			return a.suggestion.Type == model.SuggestionShiftMove
		}
		return a.slot < b.slot
	})

	// Deduplicate by canonical action key, keeping the first in ranked order,
	// so two rules describing the same gap collapse into one suggestion
	seen := map[string]bool{}
	suggestions := []model.Suggestion{}
	for _, c := range candidates {
		key := dedupKey(c.suggestion)
		if seen[key] {
			continue
		}
		seen[key] = true
		suggestions = append(suggestions, c.suggestion)
	}

	return suggestions
}

func dedupKey(s model.Suggestion) string {
	keys := make([]string, 0, len(s.Actions))
	for _, a := range s.Actions {
		key, err := ActionKey(a)
		if err != nil {
			key = fallbackKey(a)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

// targetSlot is one under-covered bucket a suggestion should fill
type targetSlot struct {
	dateKey    string
	positionID string
	startMin   int
	endMin     int
	startTime  string
	endTime    string
}

func parseTargetSlot(slot string, bucketMinutes int, positionID string) (targetSlot, bool) {
	idx := strings.IndexByte(slot, 'T')
	if idx < 0 {
		return targetSlot{}, false
	}
	start, err := timeutil.ParseTimeToMinutes(slot[idx+1:])
	if err != nil {
		return targetSlot{}, false
	}
	bucket := timeutil.NormalizeBucketMinutes(float64(bucketMinutes))
	if positionID == "" {
		positionID = model.PositionUnknown
	}
	return targetSlot{
		dateKey:    slot[:idx],
		positionID: positionID,
		startMin:   start,
		endMin:     start + bucket,
		startTime:  timeutil.FormatMinutes(start),
		endTime:    timeutil.FormatMinutes(start + bucket),
	}, true
}

// search holds the indexes the candidate checks run against
type search struct {
	input   *model.EngineInput
	ranges  map[string]model.ShiftRange
	byUser  map[string][]model.ShiftRange
	shifts  []model.Shift // deterministic order
	users   []model.User  // deterministic order
	dayOffs map[string]bool // userID+"|"+dateKey
}

func newSearch(input *model.EngineInput, ranges map[string]model.ShiftRange) *search {
	s := &search{
		input:   input,
		ranges:  ranges,
		byUser:  map[string][]model.ShiftRange{},
		dayOffs: map[string]bool{},
	}

	for _, r := range ranges {
		if r.UserID != "" {
			s.byUser[r.UserID] = append(s.byUser[r.UserID], r)
		}
	}

	s.shifts = make([]model.Shift, len(input.Shifts))
	copy(s.shifts, input.Shifts)
	sort.SliceStable(s.shifts, func(i, j int) bool {
		a, b := s.shifts[i], s.shifts[j]
		if a.DateKey != b.DateKey {
			return a.DateKey < b.DateKey
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})

	s.users = make([]model.User, len(input.Users))
	copy(s.users, input.Users)
	sort.SliceStable(s.users, func(i, j int) bool { return s.users[i].ID < s.users[j].ID })

	for _, shift := range input.Shifts {
		if shift.IsDayOff && shift.UserID != "" {
			s.dayOffs[shift.UserID+"|"+shift.DateKey] = true
		}
	}

	return s
}

// findMove looks for an existing same-position, same-date shift whose window
// can be retargeted to exactly the uncovered bucket without colliding with
// the owner's other shifts or breaking the hours/rest rules. The first
// structurally eligible candidate wins.
func (s *search) findMove(target targetSlot) (model.Suggestion, bool) {
	for _, shift := range s.shifts {
		if shift.IsDayOff || shift.UserID == "" {
			continue
		}
		r, ok := s.ranges[shift.ID]
		if !ok || r.DateKey != target.dateKey || r.Position != target.positionID {
			continue
		}
		// Shifts already covering the target slot cannot fill it by moving
		if r.StartMin < target.endMin && target.startMin < r.EndMin {
			continue
		}

		moved := model.ShiftRange{
			ShiftID:  shift.ID,
			UserID:   shift.UserID,
			DateKey:  target.dateKey,
			Position: target.positionID,
			StartMin: target.startMin,
			EndMin:   target.endMin,
		}
		// The old window is excluded: the shift is relocated, not duplicated
		if !s.fits(shift.UserID, moved, shift.ID) {
			continue
		}

		return model.Suggestion{
			Type: model.SuggestionShiftMove,
			Actions: []model.SuggestionAction{{
				Type:       model.ActionMoveShift,
				ShiftID:    shift.ID,
				UserID:     shift.UserID,
				DateKey:    target.dateKey,
				StartTime:  target.startTime,
				EndTime:    target.endTime,
				PositionID: target.positionID,
			}},
			ExpectedImpact: fmt.Sprintf("Covers the %s slot at %s", target.positionID, target.startTime),
			Explanation: fmt.Sprintf("Move shift %s to %s-%s on %s so the %s position is covered",
				shift.ID, target.startTime, target.endTime, target.dateKey, target.positionID),
		}, true
	}
	return model.Suggestion{}, false
}

// findAdd looks for an active, unit-eligible user who can take a brand new
// shift covering exactly the uncovered bucket. The first eligible user wins.
func (s *search) findAdd(target targetSlot) (model.Suggestion, bool) {
	hypothetical := model.ShiftRange{
		DateKey:  target.dateKey,
		Position: target.positionID,
		StartMin: target.startMin,
		EndMin:   target.endMin,
	}

	for _, user := range s.users {
		if !user.Active || !s.eligibleForUnit(user) {
			continue
		}
		if s.dayOffs[user.ID+"|"+target.dateKey] {
			continue
		}
		hypothetical.UserID = user.ID
		if !s.fits(user.ID, hypothetical, "") {
			continue
		}

		return model.Suggestion{
			Type: model.SuggestionAddShift,
			Actions: []model.SuggestionAction{{
				Type:       model.ActionCreateShift,
				UserID:     user.ID,
				DateKey:    target.dateKey,
				StartTime:  target.startTime,
				EndTime:    target.endTime,
				PositionID: target.positionID,
			}},
			ExpectedImpact: fmt.Sprintf("Adds %s coverage at %s", target.positionID, target.startTime),
			Explanation: fmt.Sprintf("Add a %s-%s shift for %s on %s covering the %s position",
				target.startTime, target.endTime, user.ID, target.dateKey, target.positionID),
		}, true
	}
	return model.Suggestion{}, false
}

func (s *search) eligibleForUnit(user model.User) bool {
	if len(user.UnitIDs) == 0 {
		return true
	}
	for _, id := range user.UnitIDs {
		if id == s.input.UnitID {
			return true
		}
	}
	return false
}

// fits applies the three structural checks for a hypothetical range held by
// userID: no overlap with their other shifts, no daily-hours breach, and no
// rest-period breach. excludeShiftID removes the pre-move window of a shift
// being relocated.
func (s *search) fits(userID string, hypothetical model.ShiftRange, excludeShiftID string) bool {
	others := make([]model.ShiftRange, 0, len(s.byUser[userID]))
	for _, r := range s.byUser[userID] {
		if r.ShiftID != excludeShiftID {
			others = append(others, r)
		}
	}

	hypoAbs, ok := toAbs(hypothetical)
	if !ok {
		return false
	}

	all := make([]absInterval, 0, len(others)+1)
	all = append(all, hypoAbs)
	for _, r := range others {
		abs, ok := toAbs(r)
		if !ok {
			continue
		}
		if abs.start < hypoAbs.end && hypoAbs.start < abs.end {
			return false
		}
		all = append(all, abs)
	}

	if rule := s.input.Rules.MaxHoursDay; rule != nil {
		maxMinutes := int(rule.MaxHours * 60)
		perDate := map[string]int{}
		for _, iv := range all {
			onStart := iv.endMin
			if onStart > timeutil.MinutesPerDay {
				onStart = timeutil.MinutesPerDay
			}
			perDate[iv.dateKey] += onStart - iv.startMin
			if iv.endMin > timeutil.MinutesPerDay {
				if next, err := timeutil.AddDays(iv.dateKey, 1); err == nil {
					perDate[next] += iv.endMin - timeutil.MinutesPerDay
				}
			}
		}
		for _, minutes := range perDate {
			if minutes > maxMinutes {
				return false
			}
		}
	}

	if rule := s.input.Rules.MinRest; rule != nil {
		minGap := int(rule.MinHours * 60)
		sort.Slice(all, func(i, j int) bool { return all[i].start < all[j].start })
		for i := 0; i+1 < len(all); i++ {
			if all[i+1].start-all[i].end < minGap {
				return false
			}
		}
	}

	return true
}

type absInterval struct {
	dateKey  string
	startMin int
	endMin   int
	start    int
	end      int
}

func toAbs(r model.ShiftRange) (absInterval, bool) {
	day, err := timeutil.ParseDateKey(r.DateKey)
	if err != nil {
		return absInterval{}, false
	}
	base := int(day.Unix() / 60)
	return absInterval{
		dateKey:  r.DateKey,
		startMin: r.StartMin,
		endMin:   r.EndMin,
		start:    base + r.StartMin,
		end:      base + r.EndMin,
	}, true
}
