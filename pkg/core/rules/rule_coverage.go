package rules

import (
	"fmt"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/timeutil"
)

// minCoverageRule checks each configured coverage window against the capacity
// map and reports every under-covered bucket.
//
// A rule with MinCount 0 never produces a violation.
type minCoverageRule struct{}

func (minCoverageRule) ConstraintID() model.ConstraintID {
	return model.ConstraintMinCoverage
}

func (minCoverageRule) Enabled(ctx *Context) bool {
	return len(ctx.Input.Rules.MinCoverage) > 0
}

func (minCoverageRule) Evaluate(ctx *Context) []model.Violation {
	var violations []model.Violation

	for _, rule := range ctx.Input.Rules.MinCoverage {
		if rule.MinCount <= 0 {
			continue
		}

		start, err := timeutil.ParseTimeToMinutes(rule.StartTime)
		if err != nil {
			continue
		}
		end, err := timeutil.ParseTimeToMinutes(rule.EndTime)
		if err != nil {
			continue
		}
		if end <= start {
			end += timeutil.MinutesPerDay
		}

		var slots, dates []string
		for _, dateKey := range rule.DateKeys {
			for min := start; min < end; min += ctx.BucketMinutes {
				slot := timeutil.SlotKey(dateKey, min)
				if ctx.Capacity[slot][rule.PositionID] < rule.MinCount {
					slots = append(slots, slot)
					dates = append(dates, dateKey)
				}
			}
		}

		if len(slots) == 0 {
			continue
		}

		violations = append(violations, model.Violation{
			ConstraintID: model.ConstraintMinCoverage,
			Severity:     model.SeverityHigh,
			Message: fmt.Sprintf("Position %s is below the required coverage of %d in %d time slot(s)",
				rule.PositionID, rule.MinCount, len(slots)),
			Affected: NormalizeAffected(model.Affected{
				Slots:      slots,
				DateKeys:   dates,
				PositionID: rule.PositionID,
			}),
		})
	}

	return violations
}
