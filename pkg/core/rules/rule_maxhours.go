package rules

import (
	"fmt"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/timeutil"
)

// maxHoursRule sums each user's worked minutes per calendar date. A shift
// crossing midnight is split across the two dates it touches, proportional to
// the wall-clock overlap with each, not attributed wholly to its start date.
type maxHoursRule struct{}

func (maxHoursRule) ConstraintID() model.ConstraintID {
	return model.ConstraintMaxHours
}

func (maxHoursRule) Enabled(ctx *Context) bool {
	return ctx.Input.Rules.MaxHoursDay != nil
}

func (maxHoursRule) Evaluate(ctx *Context) []model.Violation {
	maxMinutes := int(ctx.Input.Rules.MaxHoursDay.MaxHours * 60)

	type dayLoad struct {
		minutes  int
		shiftIDs []string
	}
	loads := map[string]map[string]*dayLoad{} // userID -> dateKey -> load

	add := func(userID, dateKey, shiftID string, minutes int) {
		if minutes <= 0 {
			return
		}
		byDate := loads[userID]
		if byDate == nil {
			byDate = map[string]*dayLoad{}
			loads[userID] = byDate
		}
		load := byDate[dateKey]
		if load == nil {
			load = &dayLoad{}
			byDate[dateKey] = load
		}
		load.minutes += minutes
		load.shiftIDs = append(load.shiftIDs, shiftID)
	}

	for _, r := range ctx.ShiftRanges {
		if r.UserID == "" {
			continue
		}
		onStartDate := r.EndMin
		if onStartDate > timeutil.MinutesPerDay {
			onStartDate = timeutil.MinutesPerDay
		}
		add(r.UserID, r.DateKey, r.ShiftID, onStartDate-r.StartMin)

		if r.EndMin > timeutil.MinutesPerDay {
			if next, err := timeutil.AddDays(r.DateKey, 1); err == nil {
				add(r.UserID, next, r.ShiftID, r.EndMin-timeutil.MinutesPerDay)
			}
		}
	}

	var violations []model.Violation
	for userID, byDate := range loads {
		for dateKey, load := range byDate {
			if load.minutes <= maxMinutes {
				continue
			}
			violations = append(violations, model.Violation{
				ConstraintID: model.ConstraintMaxHours,
				Severity:     model.SeverityLow,
				Message: fmt.Sprintf("User %s works %.1f hours on %s, above the daily maximum of %.1f",
					userID, float64(load.minutes)/60, dateKey, ctx.Input.Rules.MaxHoursDay.MaxHours),
				Affected: NormalizeAffected(model.Affected{
					UserIDs:  []string{userID},
					ShiftIDs: load.shiftIDs,
					DateKeys: []string{dateKey},
				}),
			})
		}
	}

	return violations
}
