package model

// Severity classifies how urgent a constraint violation is
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank returns a numeric rank for ordering (higher is more severe)
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ConstraintID identifies a scheduling rule
type ConstraintID string

const (
	ConstraintMinCoverage ConstraintID = "MIN_COVERAGE_BY_POSITION"
	ConstraintMaxHours    ConstraintID = "MAX_HOURS_PER_DAY"
	ConstraintMinRest     ConstraintID = "MIN_REST_HOURS_BETWEEN_SHIFTS"
)

// PositionUnknown is the sentinel position id used for shifts without an
// assigned position, so coverage gaps for unassigned work stay visible
const PositionUnknown = "unknown"

// User represents a staff member
type User struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name,omitempty"`
	Active bool   `json:"active"`
	// UnitIDs lists the units this user can work in. Empty means any unit.
	UnitIDs []string `json:"unitIds,omitempty"`
}

// Position represents a role that shifts are scheduled against
type Position struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name,omitempty"`
}

// Shift represents one scheduled shift (or a day-off marker)
type Shift struct {
	ID      string `json:"id" validate:"required"`
	UserID  string `json:"userId"`
	UnitID  string `json:"unitId,omitempty"`
	DateKey string `json:"dateKey"` // "2006-01-02"
	// StartTime is "HH:MM". Empty means the start is unknown and the shift
	// contributes no capacity.
	StartTime string `json:"startTime,omitempty"`
	// EndTime is "HH:MM". Empty means the shift runs until closing time.
	EndTime string `json:"endTime,omitempty"`
	// PositionID is empty for unassigned shifts (bucketed under PositionUnknown)
	PositionID string `json:"positionId,omitempty"`
	IsDayOff   bool   `json:"isDayOff,omitempty"`
}

// DayHours overrides opening/closing for a single weekday
type DayHours struct {
	OpeningTime string `json:"openingTime,omitempty"`
	ClosingTime string `json:"closingTime,omitempty"`
}

// ScheduleSettings describes the operating hours used to resolve open-ended shifts
type ScheduleSettings struct {
	OpeningTime          string `json:"openingTime,omitempty"`
	ClosingTime          string `json:"closingTime,omitempty"`
	ClosingOffsetMinutes int    `json:"closingOffsetMinutes,omitempty"`
	// WeekdayOverrides is keyed by lowercase English weekday name ("monday")
	WeekdayOverrides map[string]DayHours `json:"weekdayOverrides,omitempty"`
}

// MinCoverageRule requires a minimum headcount for one position over a time window
type MinCoverageRule struct {
	PositionID string   `json:"positionId" validate:"required"`
	DateKeys   []string `json:"dateKeys" validate:"min=1"`
	StartTime  string   `json:"startTime" validate:"required"`
	EndTime    string   `json:"endTime" validate:"required"`
	MinCount   int      `json:"minCount" validate:"min=0"`
}

// MaxHoursRule caps the hours any user may work in one calendar day
type MaxHoursRule struct {
	MaxHours float64 `json:"maxHours" validate:"gt=0"`
}

// MinRestRule requires a minimum gap between consecutive shifts of one user
type MinRestRule struct {
	MinHours float64 `json:"minHours" validate:"gt=0"`
}

// Ruleset is the set of configured scheduling rules. A nil rule is simply
// not evaluated.
type Ruleset struct {
	BucketMinutes int               `json:"bucketMinutes,omitempty"`
	MinCoverage   []MinCoverageRule `json:"minCoverage,omitempty" validate:"dive"`
	MaxHoursDay   *MaxHoursRule     `json:"maxHoursDay,omitempty"`
	MinRest       *MinRestRule      `json:"minRest,omitempty"`
}

// EngineInput is the complete snapshot the engine computes over. Capacity,
// violations and suggestions are pure functions of this value.
type EngineInput struct {
	UnitID    string           `json:"unitId" validate:"required"`
	WeekStart string           `json:"weekStart" validate:"required"`
	DateKeys  []string         `json:"dateKeys" validate:"len=7"`
	Users     []User           `json:"users" validate:"dive"`
	Positions []Position       `json:"positions"`
	Shifts    []Shift          `json:"shifts" validate:"dive"`
	Settings  ScheduleSettings `json:"settings"`
	Rules     Ruleset          `json:"rules"`
}

// CapacityMap maps slot key ("2006-01-02T15:04") to position id to headcount.
// Slots with no coverage are absent.
type CapacityMap map[string]map[string]int

// Affected lists everything a violation touches. All slices are de-duplicated
// and sorted.
type Affected struct {
	UserIDs    []string `json:"userIds,omitempty"`
	ShiftIDs   []string `json:"shiftIds,omitempty"`
	Slots      []string `json:"slots,omitempty"`
	DateKeys   []string `json:"dateKeys,omitempty"`
	PositionID string   `json:"positionId,omitempty"`
}

// Violation is one broken scheduling rule
type Violation struct {
	ConstraintID ConstraintID `json:"constraintId"`
	Severity     Severity     `json:"severity"`
	Message      string       `json:"message"`
	Affected     Affected     `json:"affected"`
}

// SuggestionType distinguishes the two corrective actions the advisor proposes
type SuggestionType string

const (
	SuggestionShiftMove SuggestionType = "SHIFT_MOVE_SUGGESTION"
	SuggestionAddShift  SuggestionType = "ADD_SHIFT_SUGGESTION"
)

// ActionType discriminates SuggestionAction variants
type ActionType string

const (
	ActionMoveShift   ActionType = "moveShift"
	ActionCreateShift ActionType = "createShift"
)

// SuggestionAction is a closed tagged variant: exactly the fields required by
// its Type are meaningful. The suggest package owns the single validator used
// by every consumer.
type SuggestionAction struct {
	Type ActionType `json:"type"`
	// ShiftID is set for moveShift only
	ShiftID string `json:"shiftId,omitempty"`
	UserID  string `json:"userId,omitempty"`
	DateKey string `json:"dateKey,omitempty"`
	// StartTime/EndTime are the new window for moveShift and the created
	// window for createShift
	StartTime  string `json:"startTime,omitempty"`
	EndTime    string `json:"endTime,omitempty"`
	PositionID string `json:"positionId,omitempty"`
}

// Suggestion is a value object: two suggestions with the same type and the
// same sorted action-key set are semantically identical.
type Suggestion struct {
	Type           SuggestionType     `json:"type"`
	Actions        []SuggestionAction `json:"actions"`
	ExpectedImpact string             `json:"expectedImpact"`
	Explanation    string             `json:"explanation"`
}

// ExplanationKind orders the assistant output (violations, then suggestions,
// then informational notes)
type ExplanationKind string

const (
	ExplanationViolation  ExplanationKind = "violation"
	ExplanationSuggestion ExplanationKind = "suggestion"
	ExplanationInfo       ExplanationKind = "info"
)

// Rank returns a numeric rank for ordering explanations by kind
func (k ExplanationKind) Rank() int {
	switch k {
	case ExplanationViolation:
		return 0
	case ExplanationSuggestion:
		return 1
	case ExplanationInfo:
		return 2
	default:
		return 3
	}
}

// Explanation is one user-facing entry in the assistant response
type Explanation struct {
	Kind         ExplanationKind   `json:"kind"`
	Severity     Severity          `json:"severity"`
	Title        string            `json:"title"`
	Details      string            `json:"details"`
	Affected     Affected          `json:"affected,omitempty"`
	ConstraintID ConstraintID      `json:"constraintId,omitempty"`
	SuggestionID string            `json:"suggestionId,omitempty"`
	Meta         map[string]string `json:"meta,omitempty"`
}

// DecisionState records a manager's verdict on one suggestion
type DecisionState string

const (
	DecisionPending  DecisionState = "pending"
	DecisionAccepted DecisionState = "accepted"
	DecisionRejected DecisionState = "rejected"
)

// Decision is a point-in-time snapshot of one recorded verdict. The engine
// never stores decisions, it only consumes them.
type Decision struct {
	SuggestionID string        `json:"suggestionId"`
	Decision     DecisionState `json:"decision"`
	Source       string        `json:"source,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	DecidedAt    string        `json:"decidedAt,omitempty"` // RFC 3339, informational only
}

// ShiftRange is a shift's resolved absolute time range
type ShiftRange struct {
	ShiftID  string `json:"shiftId"`
	UserID   string `json:"userId"`
	DateKey  string `json:"dateKey"`
	Position string `json:"position"`
	StartMin int    `json:"startMin"` // minutes since the shift's date at 00:00
	EndMin   int    `json:"endMin"`   // always > StartMin once resolved (cross-midnight adds 24h)
}

// EngineResult is the output of one full pipeline run
type EngineResult struct {
	CapacityMap CapacityMap           `json:"capacityMap"`
	ShiftRanges map[string]ShiftRange `json:"shiftRanges,omitempty"`
	Violations  []Violation           `json:"violations"`
	Suggestions []Suggestion          `json:"suggestions"`
	// Trace lists the pipeline stages executed, for debugging only
	Trace []string `json:"trace,omitempty"`
}

// AssistantSuggestion is a suggestion annotated with identity and decision state
type AssistantSuggestion struct {
	Suggestion
	ID            string        `json:"id"`        // legacy readable id
	Signature     string        `json:"signature"` // canonical v2 identity
	DecisionState DecisionState `json:"decisionState"`
}

// AssistantResponse is the user-facing view of one engine run
type AssistantResponse struct {
	Suggestions  []AssistantSuggestion `json:"suggestions"`
	Explanations []Explanation         `json:"explanations"`
}
