package insight

import "fmt"

// Snapshot is the contract every entity snapshot satisfies.
//
// A snapshot is an immutable, read-only projection of the fields the
// rules need, supplied fresh on every analysis call. All fields are
// mandatory; derived values (day counts, presence flags) are resolved by
// the caller before construction so no rule ever reaches for a wall
// clock or a default.
type Snapshot interface {
	// Validate checks the structural constraints of the snapshot and
	// returns a *MalformedSnapshotError on the first violation.
	Validate() error

	// CanonicalMap returns the snapshot's full field set as a map
	// suitable for canonical JSON marshaling (string, int, int64, bool
	// values only - no floats, no nils). Used for content-addressed
	// fingerprinting; two structurally equal snapshots must return
	// equal maps.
	CanonicalMap() map[string]any
}

// Analyzer bundles the three engine stages for one entity kind.
//
// Construct once at startup, share freely: Analyze is a pure function
// and the underlying registries are immutable.
type Analyzer[S Snapshot] struct {
	rules     *RuleSet[S]
	actions   *ActionSet[S]
	scorecard *Scorecard[S]
}

// NewAnalyzer assembles an Analyzer from its three stages.
// All three are required.
func NewAnalyzer[S Snapshot](rules *RuleSet[S], actions *ActionSet[S], scorecard *Scorecard[S]) (*Analyzer[S], error) {
	if rules == nil {
		return nil, fmt.Errorf("analyzer requires a rule set")
	}
	if actions == nil {
		return nil, fmt.Errorf("analyzer requires an action set")
	}
	if scorecard == nil {
		return nil, fmt.Errorf("analyzer requires a scorecard")
	}
	return &Analyzer[S]{rules: rules, actions: actions, scorecard: scorecard}, nil
}

// MustAnalyzer is like NewAnalyzer but panics on error.
// Use for analyzers assembled at package initialization.
func MustAnalyzer[S Snapshot](rules *RuleSet[S], actions *ActionSet[S], scorecard *Scorecard[S]) *Analyzer[S] {
	a, err := NewAnalyzer(rules, actions, scorecard)
	if err != nil {
		panic(err)
	}
	return a
}

// Analyze runs the three stages against one snapshot and combines their
// outputs into a Report.
//
// The snapshot is validated once, up front; a malformed snapshot returns
// a *MalformedSnapshotError and no partial Report. After validation the
// stages cannot fail - rules are total over well-formed snapshots.
//
// The stages do not depend on each other's output. They are evaluated
// here in a fixed order (insights, score, actions) purely for stable
// tracing; computing them in any other order, or concurrently, would
// yield the same Report.
func (a *Analyzer[S]) Analyze(snapshot S) (Report, error) {
	if err := snapshot.Validate(); err != nil {
		return Report{}, err
	}

	return Report{
		Insights: a.rules.Evaluate(snapshot),
		Score:    a.scorecard.Score(snapshot),
		Actions:  a.actions.Recommend(snapshot),
	}, nil
}
