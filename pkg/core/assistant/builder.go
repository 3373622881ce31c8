// Package assistant turns an engine result into user-facing explanations and
// overlays recorded accept/reject decisions onto the suggestions.
package assistant

import (
	"fmt"
	"sort"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
	"github.com/Oliverngu/roster-advisor/pkg/core/suggest"
)

// Build is a pure function of its three inputs: no clock, no random ids, no
// map iteration order leaks into the output. Calling it twice with the same
// arguments (including nil decisions) yields deep-equal responses.
func Build(input *model.EngineInput, result *model.EngineResult, decisions []model.Decision, mode suggest.Mode) (*model.AssistantResponse, error) {
	decisionByID := make(map[string]model.DecisionState, len(decisions))
	for _, d := range decisions {
		decisionByID[d.SuggestionID] = d.Decision
	}

	explanations := make([]model.Explanation, 0, len(result.Violations)+len(result.Suggestions)+2)

	for _, v := range result.Violations {
		explanations = append(explanations, model.Explanation{
			Kind:         model.ExplanationViolation,
			Severity:     v.Severity,
			Title:        violationTitle(v.ConstraintID),
			Details:      v.Message,
			Affected:     v.Affected,
			ConstraintID: v.ConstraintID,
		})
	}

	suggestions := []model.AssistantSuggestion{}
	for _, s := range result.Suggestions {
		signature, err := suggest.SignatureV2(s, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to sign suggestion: %w", err)
		}
		legacy := suggest.LegacyID(s)

		state := model.DecisionPending
		switch decisionByID[signature] {
		case model.DecisionAccepted:
			// Applied suggestions leave the list; only the trace of the
			// application remains
			explanations = append(explanations, model.Explanation{
				Kind:         model.ExplanationInfo,
				Severity:     model.SeverityLow,
				Title:        "Suggestion applied",
				Details:      s.Explanation,
				SuggestionID: signature,
			})
			continue
		case model.DecisionRejected:
			state = model.DecisionRejected
			explanations = append(explanations, model.Explanation{
				Kind:         model.ExplanationInfo,
				Severity:     model.SeverityLow,
				Title:        "Suggestion dismissed",
				Details:      s.Explanation,
				SuggestionID: signature,
			})
		}

		suggestions = append(suggestions, model.AssistantSuggestion{
			Suggestion:    s,
			ID:            legacy,
			Signature:     signature,
			DecisionState: state,
		})
		explanations = append(explanations, model.Explanation{
			Kind:         model.ExplanationSuggestion,
			Severity:     model.SeverityMedium,
			Title:        s.ExpectedImpact,
			Details:      s.Explanation,
			SuggestionID: signature,
			Meta: map[string]string{
				"suggestionIdV1": legacy,
				"suggestionIdV2": signature,
				"decisionState":  string(state),
			},
		})
	}

	explanations = append(explanations,
		model.Explanation{
			Kind:     model.ExplanationInfo,
			Severity: model.SeverityLow,
			Title:    "Bucket size",
			Details:  fmt.Sprintf("Capacity is computed in %d-minute buckets", effectiveBucket(input)),
		},
		model.Explanation{
			Kind:     model.ExplanationInfo,
			Severity: model.SeverityLow,
			Title:    "Week range",
			Details:  weekRange(input),
		},
	)

	SortExplanations(explanations)

	return &model.AssistantResponse{
		Suggestions:  suggestions,
		Explanations: explanations,
	}, nil
}

// SortExplanations orders by kind (violation, suggestion, info), severity
// descending, title ascending, then id ascending. One comparator, shared by
// everything that renders explanations.
func SortExplanations(explanations []model.Explanation) {
	sort.SliceStable(explanations, func(i, j int) bool {
		a, b := explanations[i], explanations[j]
		if a.Kind.Rank() != b.Kind.Rank() {
			return a.Kind.Rank() < b.Kind.Rank()
		}
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return explanationID(a) < explanationID(b)
	})
}

func explanationID(e model.Explanation) string {
	if e.SuggestionID != "" {
		return e.SuggestionID
	}
	return string(e.ConstraintID)
}

func violationTitle(id model.ConstraintID) string {
	switch id {
	case model.ConstraintMinCoverage:
		return "Coverage gap"
	case model.ConstraintMaxHours:
		return "Daily hours exceeded"
	case model.ConstraintMinRest:
		return "Insufficient rest between shifts"
	default:
		return string(id)
	}
}

func effectiveBucket(input *model.EngineInput) int {
	if input.Rules.BucketMinutes > 0 {
		return input.Rules.BucketMinutes
	}
	return 60
}

func weekRange(input *model.EngineInput) string {
	if len(input.DateKeys) == 0 {
		return "Week starting " + input.WeekStart
	}
	return fmt.Sprintf("Week from %s to %s", input.DateKeys[0], input.DateKeys[len(input.DateKeys)-1])
}
