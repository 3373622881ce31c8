package rules

import (
	"fmt"
	"sort"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/timeutil"
)

// minRestRule checks the gap between each user's consecutive shifts against
// the configured minimum rest period.
type minRestRule struct{}

func (minRestRule) ConstraintID() model.ConstraintID {
	return model.ConstraintMinRest
}

func (minRestRule) Enabled(ctx *Context) bool {
	return ctx.Input.Rules.MinRest != nil
}

func (minRestRule) Evaluate(ctx *Context) []model.Violation {
	minGap := int(ctx.Input.Rules.MinRest.MinHours * 60)

	byUser := map[string][]absRange{}
	for _, r := range ctx.ShiftRanges {
		if r.UserID == "" {
			continue
		}
		ar, ok := toAbsRange(r)
		if !ok {
			continue
		}
		byUser[r.UserID] = append(byUser[r.UserID], ar)
	}

	var violations []model.Violation
	for userID, ranges := range byUser {
		sort.Slice(ranges, func(i, j int) bool {
			if ranges[i].start != ranges[j].start {
				return ranges[i].start < ranges[j].start
			}
			return ranges[i].shiftID < ranges[j].shiftID
		})

		for i := 0; i+1 < len(ranges); i++ {
			gap := ranges[i+1].start - ranges[i].end
			if gap >= minGap {
				continue
			}
			violations = append(violations, model.Violation{
				ConstraintID: model.ConstraintMinRest,
				Severity:     model.SeverityMedium,
				Message: fmt.Sprintf("User %s has only %.1f hours of rest between shifts %s and %s (minimum %.1f)",
					userID, float64(gap)/60, ranges[i].shiftID, ranges[i+1].shiftID,
					ctx.Input.Rules.MinRest.MinHours),
				Affected: NormalizeAffected(model.Affected{
					UserIDs:  []string{userID},
					ShiftIDs: []string{ranges[i].shiftID, ranges[i+1].shiftID},
					DateKeys: []string{ranges[i].dateKey, ranges[i+1].dateKey},
				}),
			})
		}
	}

	return violations
}

// absRange is a shift range on an absolute minute axis so gaps across
// midnight and across dates compare directly.
type absRange struct {
	shiftID string
	dateKey string
	start   int
	end     int
}

func toAbsRange(r model.ShiftRange) (absRange, bool) {
	day, err := timeutil.ParseDateKey(r.DateKey)
	if err != nil {
		return absRange{}, false
	}
	base := int(day.Unix() / 60)
	return absRange{
		shiftID: r.ShiftID,
		dateKey: r.DateKey,
		start:   base + r.StartMin,
		end:     base + r.EndMin,
	}, true
}
