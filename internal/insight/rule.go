package insight

import "fmt"

// Rule is one insight-producing predicate over a snapshot.
//
// Eval returns nil when the rule does not apply; a nil result contributes
// nothing to the evaluation (no placeholder, no error). A rule must be a
// pure function: same snapshot, same output, no side effects.
//
// Each rule produces insights of a single fixed kind under a single fixed
// ID; only the human-readable text may vary with snapshot values.
type Rule[S any] struct {
	// ID identifies the rule and the insights it produces.
	ID string

	// Eval inspects the snapshot and returns an Insight or nil.
	Eval func(S) *Insight
}

// ActionRule is one action-producing predicate over a snapshot.
// Same purity and lifecycle contract as Rule.
type ActionRule[S any] struct {
	// ID identifies the rule and the actions it produces.
	ID string

	// Eval inspects the snapshot and returns a SuggestedAction or nil.
	Eval func(S) *SuggestedAction
}

// RuleSet is an ordered, immutable registry of insight rules.
//
// Built once per entity kind at startup and shared across arbitrarily
// many concurrent evaluations - it holds no mutable state.
//
// INVARIANT: rule order NEVER changes after construction. Registration
// order is evaluation order is output order.
type RuleSet[S any] struct {
	rules []Rule[S]
}

// NewRuleSet builds a RuleSet from rules in registration order.
//
// The slice is copied to prevent external mutation from breaking the
// ordering invariant. Validation happens here, at build time, not at
// evaluation time:
//   - at least one rule
//   - every rule has a non-empty ID and a non-nil Eval
//   - IDs are unique within the set
func NewRuleSet[S any](rules ...Rule[S]) (*RuleSet[S], error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("rule set requires at least one rule")
	}

	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d: missing id", i)
		}
		if r.Eval == nil {
			return nil, fmt.Errorf("rule %s: missing eval func", r.ID)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule ID: %s", r.ID)
		}
		seen[r.ID] = true
	}

	set := make([]Rule[S], len(rules))
	copy(set, rules)
	return &RuleSet[S]{rules: set}, nil
}

// MustRuleSet is like NewRuleSet but panics on error.
// Use for rule sets assembled from compile-time constants.
func MustRuleSet[S any](rules ...Rule[S]) *RuleSet[S] {
	set, err := NewRuleSet(rules...)
	if err != nil {
		panic(err)
	}
	return set
}

// Evaluate invokes each rule once, in registration order, and collects
// the non-nil results. The returned slice is never nil and has length
// between 0 and Len().
//
// No retries, no partial results: a panicking rule propagates unmodified
// to the caller. A broken rule is a defect, not a transient condition.
func (rs *RuleSet[S]) Evaluate(snapshot S) []Insight {
	out := make([]Insight, 0, len(rs.rules))
	for _, r := range rs.rules {
		in := r.Eval(snapshot)
		if in == nil {
			continue
		}
		validateInsight(r.ID, in)
		out = append(out, *in)
	}
	return out
}

// Len returns the number of registered rules.
func (rs *RuleSet[S]) Len() int {
	return len(rs.rules)
}

// ActionSet is an ordered, immutable registry of action rules.
//
// Priority is by convention encoded in registration order (most urgent
// first); the set itself enforces no mutual exclusivity between rules.
// If a rule set's guards are not mutually exclusive, contradictory
// suggestions can legitimately appear - that is a rule-authoring
// responsibility, not an engine bug.
type ActionSet[S any] struct {
	rules []ActionRule[S]
}

// NewActionSet builds an ActionSet from rules in registration order.
// Same build-time validation and copy semantics as NewRuleSet.
func NewActionSet[S any](rules ...ActionRule[S]) (*ActionSet[S], error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("action set requires at least one rule")
	}

	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("action rule %d: missing id", i)
		}
		if r.Eval == nil {
			return nil, fmt.Errorf("action rule %s: missing eval func", r.ID)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate action rule ID: %s", r.ID)
		}
		seen[r.ID] = true
	}

	set := make([]ActionRule[S], len(rules))
	copy(set, rules)
	return &ActionSet[S]{rules: set}, nil
}

// MustActionSet is like NewActionSet but panics on error.
func MustActionSet[S any](rules ...ActionRule[S]) *ActionSet[S] {
	set, err := NewActionSet(rules...)
	if err != nil {
		panic(err)
	}
	return set
}

// Recommend invokes each action rule once, in registration order, and
// collects the non-nil results. Each firing rule is independently
// appended; the output order equals registration order regardless of
// which snapshot fields triggered the rules.
func (as *ActionSet[S]) Recommend(snapshot S) []SuggestedAction {
	out := make([]SuggestedAction, 0, len(as.rules))
	for _, r := range as.rules {
		a := r.Eval(snapshot)
		if a == nil {
			continue
		}
		validateAction(r.ID, a)
		out = append(out, *a)
	}
	return out
}

// Len returns the number of registered action rules.
func (as *ActionSet[S]) Len() int {
	return len(as.rules)
}
