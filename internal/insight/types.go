package insight

import "fmt"

// Kind classifies an Insight.
type Kind string

const (
	// KindSuccess marks a positive observation about the entity.
	KindSuccess Kind = "success"

	// KindWarning marks a condition that degrades the entity's health.
	KindWarning Kind = "warning"

	// KindSuggestion marks a neutral observation with an improvement angle.
	KindSuggestion Kind = "suggestion"
)

// Valid reports whether k is one of the three declared kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindWarning, KindSuggestion:
		return true
	}
	return false
}

// Insight is one classified observation about an entity snapshot.
//
// Insights are produced fresh on every evaluation and never persisted by
// the engine. Their order in a Report is the registration order of the
// rules that produced them, not a severity sort.
type Insight struct {
	// ID identifies the rule branch that produced the insight.
	// Unique within one evaluation (enforced at RuleSet construction).
	ID string `json:"id"`

	// Kind classifies the observation.
	Kind Kind `json:"kind"`

	// Title is a short human-readable headline.
	Title string `json:"title"`

	// Description elaborates, possibly parameterized by snapshot values
	// (a day count, a failure count).
	Description string `json:"description"`
}

// SuggestedAction is one recommended remediation for an entity.
//
// Same lifecycle as Insight: ephemeral, call-scoped, ordered by rule
// registration. The engine only describes the action; performing it is
// entirely the caller's responsibility.
type SuggestedAction struct {
	// ID identifies the action rule that produced the suggestion.
	ID string `json:"id"`

	// Title is a short human-readable headline.
	Title string `json:"title"`

	// Description elaborates on why the action is suggested.
	Description string `json:"description"`

	// Confidence is an integer in [0,100], a fixed constant per rule.
	// It is NOT derived from the health score.
	Confidence int `json:"confidence"`

	// ActionLabel is an optional short imperative label for a UI
	// affordance (a button caption). Empty when the action is purely
	// informational.
	ActionLabel string `json:"action_label,omitempty"`
}

// Report is the combined, read-only result of one analysis run.
//
// The three fields are computed independently from the same snapshot;
// none is derived from another.
type Report struct {
	Insights []Insight         `json:"insights"`
	Score    int               `json:"score"`
	Actions  []SuggestedAction `json:"actions"`
}

// validateInsight checks the structural constraints a rule's output must
// satisfy. Called from RuleSet.Evaluate; a violation is a rule-authoring
// defect and surfaces as a panic (fail-fast, not a runtime case).
func validateInsight(ruleID string, in *Insight) {
	if in.ID == "" {
		panic(fmt.Sprintf("insight: rule %s produced an insight without an id", ruleID))
	}
	if !in.Kind.Valid() {
		panic(fmt.Sprintf("insight: rule %s produced invalid kind %q", ruleID, in.Kind))
	}
}

// validateAction checks the structural constraints an action rule's
// output must satisfy. Same fail-fast contract as validateInsight.
func validateAction(ruleID string, a *SuggestedAction) {
	if a.ID == "" {
		panic(fmt.Sprintf("insight: action rule %s produced an action without an id", ruleID))
	}
	if a.Confidence < 0 || a.Confidence > 100 {
		panic(fmt.Sprintf("insight: action rule %s produced confidence %d outside [0,100]", ruleID, a.Confidence))
	}
}
