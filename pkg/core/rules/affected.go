package rules

import (
	"sort"
	"strings"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
)

// AffectedKey builds the canonical identity of a violation's blast radius:
// positionId, then the sorted-joined user, shift, date and slot lists, all
// pipe-joined. Acceptance deltas and ordering both key off this string.
func AffectedKey(v model.Violation) string {
	parts := []string{
		v.Affected.PositionID,
		strings.Join(sortedCopy(v.Affected.UserIDs), ","),
		strings.Join(sortedCopy(v.Affected.ShiftIDs), ","),
		strings.Join(sortedCopy(v.Affected.DateKeys), ","),
		strings.Join(sortedCopy(v.Affected.Slots), ","),
	}
	return strings.Join(parts, "|")
}

// NormalizeAffected de-duplicates and sorts every list in an Affected set
func NormalizeAffected(a model.Affected) model.Affected {
	return model.Affected{
		UserIDs:    dedupeSorted(a.UserIDs),
		ShiftIDs:   dedupeSorted(a.ShiftIDs),
		Slots:      dedupeSorted(a.Slots),
		DateKeys:   dedupeSorted(a.DateKeys),
		PositionID: a.PositionID,
	}
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

func dedupeSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
