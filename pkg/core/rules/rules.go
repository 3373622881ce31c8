// Package rules evaluates the configured scheduling constraints against a
// computed capacity map and shift index.
package rules

import (
	"sort"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/timeutil"
)

// Context carries everything a rule needs to evaluate. Rules only read it.
type Context struct {
	Input         *model.EngineInput
	Capacity      model.CapacityMap
	ShiftRanges   map[string]model.ShiftRange
	BucketMinutes int
}

// Rule is one independent constraint check. A rule whose configuration is
// absent reports itself as disabled and produces no violations.
type Rule interface {
	ConstraintID() model.ConstraintID
	Enabled(ctx *Context) bool
	Evaluate(ctx *Context) []model.Violation
}

// All returns the closed set of known rules in registration order. Adding a
// rule here is the only step needed to make it part of every evaluation.
func All() []Rule {
	return []Rule{
		minCoverageRule{},
		maxHoursRule{},
		minRestRule{},
	}
}

// Evaluate runs every enabled rule and returns the violations in canonical
// order: severity descending, constraint id ascending, affected key ascending.
func Evaluate(input *model.EngineInput, capacity model.CapacityMap, ranges map[string]model.ShiftRange) []model.Violation {
	ctx := &Context{
		Input:         input,
		Capacity:      capacity,
		ShiftRanges:   ranges,
		BucketMinutes: timeutil.NormalizeBucketMinutes(float64(input.Rules.BucketMinutes)),
	}

	violations := []model.Violation{}
	for _, rule := range All() {
		if !rule.Enabled(ctx) {
			continue
		}
		violations = append(violations, rule.Evaluate(ctx)...)
	}

	SortViolations(violations)
	return violations
}

// SortViolations orders violations by the shared comparator. The ordering is
// an external contract: callers and tests depend on it byte for byte.
func SortViolations(violations []model.Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		return CompareViolations(violations[i], violations[j]) < 0
	})
}

// CompareViolations is the single comparator behind violation ordering
func CompareViolations(a, b model.Violation) int {
	if a.Severity.Rank() != b.Severity.Rank() {
		return b.Severity.Rank() - a.Severity.Rank()
	}
	if a.ConstraintID != b.ConstraintID {
		if a.ConstraintID < b.ConstraintID {
			return -1
		}
		return 1
	}
	ak, bk := AffectedKey(a), AffectedKey(b)
	switch {
	case ak < bk:
		return -1
	case ak > bk:
		return 1
	default:
		return 0
	}
}
