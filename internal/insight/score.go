package insight

import "fmt"

// Score bounds. The clamp after aggregation is the only nonlinearity in
// the scoring pipeline.
const (
	MinScore = 0
	MaxScore = 100
)

// Adjustment is one signed contribution to the health score.
//
// Delta is a pure function from snapshot to an integer delta; a rule that
// does not apply returns 0. No floats anywhere in scoring - all deltas
// and the baseline are integers.
type Adjustment[S any] struct {
	// ID identifies the adjustment for tracing and testing.
	ID string

	// Delta returns the signed contribution for this snapshot.
	Delta func(S) int
}

// Scorecard computes one integer score per snapshot: a fixed baseline
// plus an ordered list of signed adjustments, clamped to [0,100].
//
// Because all adjustments are pure additions the declared order cannot
// change the numeric result, but the order is still fixed at
// construction and applied stably so individual contributions are
// traceable in tests.
type Scorecard[S any] struct {
	baseline    int
	adjustments []Adjustment[S]
}

// NewScorecard builds a Scorecard with the given baseline and
// adjustments in declaration order.
//
// The baseline is a domain constant supplied by the instantiation, not
// hardcoded here. Validation mirrors NewRuleSet: build-time, fail-fast.
func NewScorecard[S any](baseline int, adjustments ...Adjustment[S]) (*Scorecard[S], error) {
	if baseline < MinScore || baseline > MaxScore {
		return nil, fmt.Errorf("baseline %d outside [%d,%d]", baseline, MinScore, MaxScore)
	}
	if len(adjustments) == 0 {
		return nil, fmt.Errorf("scorecard requires at least one adjustment")
	}

	seen := make(map[string]bool, len(adjustments))
	for i, a := range adjustments {
		if a.ID == "" {
			return nil, fmt.Errorf("adjustment %d: missing id", i)
		}
		if a.Delta == nil {
			return nil, fmt.Errorf("adjustment %s: missing delta func", a.ID)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("duplicate adjustment ID: %s", a.ID)
		}
		seen[a.ID] = true
	}

	adjs := make([]Adjustment[S], len(adjustments))
	copy(adjs, adjustments)
	return &Scorecard[S]{baseline: baseline, adjustments: adjs}, nil
}

// MustScorecard is like NewScorecard but panics on error.
func MustScorecard[S any](baseline int, adjustments ...Adjustment[S]) *Scorecard[S] {
	sc, err := NewScorecard(baseline, adjustments...)
	if err != nil {
		panic(err)
	}
	return sc
}

// Score applies every adjustment to the baseline in declaration order
// and clamps the result to [MinScore,MaxScore]. Recomputed from scratch
// on every call; never incrementally updated, never stored.
func (sc *Scorecard[S]) Score(snapshot S) int {
	raw := sc.baseline
	for _, a := range sc.adjustments {
		raw += a.Delta(snapshot)
	}
	return clamp(raw)
}

// Baseline returns the configured baseline. Used for testing and
// introspection.
func (sc *Scorecard[S]) Baseline() int {
	return sc.baseline
}

// clamp bounds raw to [MinScore,MaxScore] via max(0, min(100, raw)).
func clamp(raw int) int {
	if raw < MinScore {
		return MinScore
	}
	if raw > MaxScore {
		return MaxScore
	}
	return raw
}
