// Package suggest searches for corrective roster edits and gives each
// suggestion a stable identity.
package suggest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Oliverngu/roster-advisor/pkg/core/model"
)

// Mode selects how malformed actions are treated during canonicalization.
// Strict raises immediately (development and tests), lenient degrades to a
// hashed fallback key so a bad action never takes the pipeline down.
type Mode string

const (
	ModeStrict  Mode = "strict"
	ModeLenient Mode = "lenient"
)

// signatureVersion tags the canonical payload so future schemes can coexist
// with persisted identities.
const signatureVersion = "v2"

// MalformedActionError reports a known action type with missing or invalid
// required fields. The preview is sanitized and truncated for diagnostics.
type MalformedActionError struct {
	ActionType model.ActionType
	Missing    []string
	Preview    string
}

func (e *MalformedActionError) Error() string {
	return fmt.Sprintf("malformed %s action: missing fields %v (action: %s)",
		e.ActionType, e.Missing, e.Preview)
}

// ValidateAction is the single validator for the closed action variants.
// Every consumer (signing, acceptance, generation) goes through it, so a new
// action kind cannot silently bypass validation at one call site.
func ValidateAction(a model.SuggestionAction) error {
	var missing []string
	requireField := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch a.Type {
	case model.ActionMoveShift:
		requireField("shiftId", a.ShiftID)
		requireField("userId", a.UserID)
		requireField("dateKey", a.DateKey)
		requireField("newStartTime", a.StartTime)
		requireField("newEndTime", a.EndTime)
	case model.ActionCreateShift:
		requireField("userId", a.UserID)
		requireField("dateKey", a.DateKey)
		requireField("startTime", a.StartTime)
		requireField("endTime", a.EndTime)
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}

	if len(missing) > 0 {
		return &MalformedActionError{ActionType: a.Type, Missing: missing, Preview: actionPreview(a)}
	}
	return nil
}

// ActionKey builds the canonical per-action key used for deduplication and
// the v2 signature. The action must be valid.
func ActionKey(a model.SuggestionAction) (string, error) {
	if err := ValidateAction(a); err != nil {
		return "", err
	}
	switch a.Type {
	case model.ActionMoveShift:
		return fmt.Sprintf("move:%s:%s:%s-%s", a.ShiftID, a.DateKey, a.StartTime, a.EndTime), nil
	case model.ActionCreateShift:
		return fmt.Sprintf("add:%s:%s:%s-%s:%s", a.UserID, a.DateKey, a.StartTime, a.EndTime, a.PositionID), nil
	default:
		return "", fmt.Errorf("unknown action type %q", a.Type)
	}
}

// LegacyID is the original human-readable identity: the suggestion type and
// each action's ordered fields concatenated directly, no hashing. Kept so
// already-persisted references stay resolvable.
func LegacyID(s model.Suggestion) string {
	parts := []string{string(s.Type)}
	for _, a := range s.Actions {
		parts = append(parts, string(a.Type), a.ShiftID, a.UserID, a.DateKey,
			a.StartTime, a.EndTime, a.PositionID)
	}
	return strings.Join(parts, "|")
}

// CanonicalStringV2 serializes a suggestion into its canonical, order
// independent v2 representation: validated (or degraded) per-action keys,
// sorted lexicographically, wrapped with the type and version into a
// recursively key-sorted JSON document.
func CanonicalStringV2(s model.Suggestion, mode Mode) (string, error) {
	keys := make([]string, 0, len(s.Actions))
	for _, a := range s.Actions {
		key, err := ActionKey(a)
		if err != nil {
			// Malformed known types are hard failures in strict mode;
			// unknown action types always degrade.
			var malformed *MalformedActionError
			if errors.As(err, &malformed) && mode == ModeStrict {
				return "", err
			}
			key = fallbackKey(a)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	payload := map[string]any{
		"type":       string(s.Type),
		"version":    signatureVersion,
		"actionKeys": keys,
	}
	// json.Marshal sorts map keys, so the document is key-sorted at every
	// level regardless of construction order
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize suggestion: %w", err)
	}
	canonical := string(raw)

	if mode == ModeStrict {
		if err := checkCanonicalInvariants(s, canonical, keys); err != nil {
			return "", err
		}
	}
	return canonical, nil
}

// SignatureV2 is the canonical identity of a suggestion: the SHA-256 of its
// canonical v2 string, hex encoded. Used as an idempotency key by persistence.
func SignatureV2(s model.Suggestion, mode Mode) (string, error) {
	canonical, err := CanonicalStringV2(s, mode)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:]), nil
}

// checkCanonicalInvariants re-derives the canonical string and rejects
// non-deterministic serialization or keys with empty field segments. Either
// indicates a construction bug upstream, never a data problem.
func checkCanonicalInvariants(s model.Suggestion, canonical string, keys []string) error {
	for _, key := range keys {
		if strings.HasPrefix(key, "degraded:") {
			continue
		}
		if strings.Contains(key, "::") || strings.HasSuffix(key, ":") || strings.Contains(key, ":-") {
			return fmt.Errorf("canonical action key %q contains an empty field", key)
		}
	}

	again := make([]string, 0, len(s.Actions))
	for _, a := range s.Actions {
		key, err := ActionKey(a)
		if err != nil {
			key = fallbackKey(a)
		}
		again = append(again, key)
	}
	sort.Strings(again)
	raw, err := json.Marshal(map[string]any{
		"type":       string(s.Type),
		"version":    signatureVersion,
		"actionKeys": again,
	})
	if err != nil {
		return err
	}
	if string(raw) != canonical {
		return fmt.Errorf("canonical serialization is not deterministic")
	}
	return nil
}

// fallbackKey is the hashed, type-tagged identity for actions that cannot be
// keyed directly. It embeds a short sanitized preview so logs stay readable.
func fallbackKey(a model.SuggestionAction) string {
	tag := string(a.Type)
	if tag == "" {
		tag = "unknown"
	}
	preview := actionPreview(a)
	sum := sha256.Sum256([]byte(preview))
	return fmt.Sprintf("degraded:%s:%s:%s", tag, hex.EncodeToString(sum[:])[:16], preview)
}

// actionPreview renders a short, sanitized view of an action for diagnostics
func actionPreview(a model.SuggestionAction) string {
	raw, err := json.Marshal(a)
	if err != nil {
		return "unserializable"
	}
	const maxPreview = 80
	preview := string(raw)
	if len(preview) > maxPreview {
		preview = preview[:maxPreview]
	}
	return preview
}
