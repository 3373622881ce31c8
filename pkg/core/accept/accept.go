// Package accept applies a suggestion's actions to a roster snapshot and
// measures the effect by re-running the engine on the modified input.
package accept

import (
	"fmt"
	"sort"

	"github.com/Oliverngu/roster-advisor/pkg/core/engine"
	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/rules"
	"github.com/Oliverngu/roster-advisor/pkg/core/suggest"
)

// Outcome classifies the overall result of one accept attempt
type Outcome string

const (
	OutcomeAccepted          Outcome = "accepted"
	OutcomePartiallyAccepted Outcome = "partially-accepted"
	OutcomeRejected          Outcome = "rejected"
)

// ActionIssue explains why one action was not applied
type ActionIssue struct {
	ActionKey string
	Message   string
}

// ApplyResult reports the per-action effect of applying a suggestion
type ApplyResult struct {
	Shifts   []model.Shift
	Applied  []string
	Rejected []string
	Issues   []ActionIssue
}

// AcceptResult is the full before/after picture of one accepted suggestion
type AcceptResult struct {
	Before              *model.EngineResult
	After               *model.EngineResult
	Apply               ApplyResult
	ResolvedViolations  []string
	NewViolations       []string
	RemainingViolations []string
	Outcome             Outcome
}

// ApplySuggestionActions validates each action against the current shift list
// and applies the valid ones. Actions are independent: one invalid action is
// collected as an issue without blocking the rest.
func ApplySuggestionActions(input *model.EngineInput, suggestion model.Suggestion) ApplyResult {
	shifts := make([]model.Shift, len(input.Shifts))
	copy(shifts, input.Shifts)

	result := ApplyResult{
		Applied:  []string{},
		Rejected: []string{},
		Issues:   []ActionIssue{},
	}

	for _, action := range suggestion.Actions {
		key := actionKeyOrFallback(action)

		if err := suggest.ValidateAction(action); err != nil {
			result.Rejected = append(result.Rejected, key)
			result.Issues = append(result.Issues, ActionIssue{ActionKey: key, Message: err.Error()})
			continue
		}

		switch action.Type {
		case model.ActionMoveShift:
			idx := findShift(shifts, action.ShiftID)
			if idx < 0 {
				result.Rejected = append(result.Rejected, key)
				result.Issues = append(result.Issues, ActionIssue{
					ActionKey: key,
					Message:   fmt.Sprintf("shift %s not found", action.ShiftID),
				})
				continue
			}
			shifts[idx].UserID = action.UserID
			shifts[idx].DateKey = action.DateKey
			shifts[idx].StartTime = action.StartTime
			shifts[idx].EndTime = action.EndTime
			if action.PositionID != "" {
				shifts[idx].PositionID = action.PositionID
			}
			result.Applied = append(result.Applied, key)

		case model.ActionCreateShift:
			position := action.PositionID
			if position == model.PositionUnknown {
				position = ""
			}
			shifts = append(shifts, model.Shift{
				ID:         syntheticShiftID(action),
				UserID:     action.UserID,
				UnitID:     input.UnitID,
				DateKey:    action.DateKey,
				StartTime:  action.StartTime,
				EndTime:    action.EndTime,
				PositionID: position,
			})
			result.Applied = append(result.Applied, key)
		}
	}

	result.Shifts = shifts
	return result
}

// AcceptSuggestion runs the engine before and after applying a suggestion and
// reports the violation delta. If nothing applied, the after state is the
// before state and the outcome is rejected.
func AcceptSuggestion(input *model.EngineInput, suggestion model.Suggestion) AcceptResult {
	before := engine.Run(input)

	apply := ApplySuggestionActions(input, suggestion)
	if len(apply.Applied) == 0 {
		return AcceptResult{
			Before:              before,
			After:               before,
			Apply:               apply,
			ResolvedViolations:  []string{},
			NewViolations:       []string{},
			RemainingViolations: []string{},
			Outcome:             OutcomeRejected,
		}
	}

	modified := *input
	modified.Shifts = apply.Shifts
	after := engine.Run(&modified)

	beforeKeys := violationKeySet(before.Violations)
	afterKeys := violationKeySet(after.Violations)

	result := AcceptResult{
		Before:              before,
		After:               after,
		Apply:               apply,
		ResolvedViolations:  sortedDiff(beforeKeys, afterKeys),
		NewViolations:       sortedDiff(afterKeys, beforeKeys),
		RemainingViolations: sortedIntersection(beforeKeys, afterKeys),
	}

	if len(result.ResolvedViolations) > 0 {
		result.Outcome = OutcomeAccepted
	} else {
		result.Outcome = OutcomePartiallyAccepted
	}
	return result
}

func actionKeyOrFallback(action model.SuggestionAction) string {
	key, err := suggest.ActionKey(action)
	if err != nil {
		return fmt.Sprintf("invalid:%s:%s:%s", action.Type, action.ShiftID, action.UserID)
	}
	return key
}

func findShift(shifts []model.Shift, id string) int {
	for i := range shifts {
		if shifts[i].ID == id {
			return i
		}
	}
	return -1
}

// syntheticShiftID derives a content-based id for a created shift so repeated
// applications of the same suggestion produce the same roster
func syntheticShiftID(action model.SuggestionAction) string {
	return fmt.Sprintf("new-%s-%s-%s", action.UserID, action.DateKey, action.StartTime)
}

func violationKeySet(violations []model.Violation) map[string]bool {
	keys := make(map[string]bool, len(violations))
	for _, v := range violations {
		keys[string(v.ConstraintID)+"|"+rules.AffectedKey(v)] = true
	}
	return keys
}

func sortedDiff(a, b map[string]bool) []string {
	out := []string{}
	for key := range a {
		if !b[key] {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func sortedIntersection(a, b map[string]bool) []string {
	out := []string{}
	for key := range a {
		if b[key] {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
