// Package engine runs the full analysis pipeline over one week's roster
// snapshot: capacity, then rule evaluation, then corrective suggestions.
package engine

import (
	"fmt"

	"github.com/Oliverngu/roster-advisor/pkg/core/capacity"
	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/rules"
	"github.com/Oliverngu/roster-advisor/pkg/core/suggest"
)

// Run recomputes everything from scratch on every call: the result is a pure
// function of the input, which is what makes suggestion identities usable as
// idempotency keys. It never fails for a structurally valid input.
func Run(input *model.EngineInput) *model.EngineResult {
	computed := capacity.Compute(input)
	violations := rules.Evaluate(input, computed.Capacity, computed.ShiftRanges)
	suggestions := suggest.Generate(input, computed.Capacity, computed.ShiftRanges, violations)

	return &model.EngineResult{
		CapacityMap: computed.Capacity,
		ShiftRanges: computed.ShiftRanges,
		Violations:  violations,
		Suggestions: suggestions,
		Trace: []string{
			fmt.Sprintf("capacity: %d slots over %d shifts", len(computed.Capacity), len(computed.ShiftRanges)),
			fmt.Sprintf("rules: %d violations", len(violations)),
			fmt.Sprintf("suggestions: %d candidates", len(suggestions)),
		},
	}
}
