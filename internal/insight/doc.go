// Package insight implements the generic entity health analysis engine.
//
// The engine is three independent, pure computations over one entity
// snapshot:
//
//   - RuleSet: an ordered registry of insight rules, each inspecting the
//     snapshot and yielding zero or one classified Insight.
//   - Scorecard: a baseline plus an ordered list of signed integer
//     adjustments, clamped to [0,100].
//   - ActionSet: an ordered registry of action rules, each yielding zero
//     or one SuggestedAction with a fixed confidence.
//
// An Analyzer bundles the three and produces a Report. The stages never
// read each other's output; they are parallel views over the same
// snapshot, so a Report may legitimately pair an empty insight list with
// a non-baseline score.
//
// DETERMINISM:
//
// Every stage is a pure function. Rule registries are built once,
// validated at construction, and never mutated afterwards, so a single
// Analyzer is safe for arbitrarily many concurrent Analyze calls with no
// coordination. Equal snapshots always produce equal Reports - there is
// no hidden state, no randomness, and no wall-clock access (time-derived
// fields such as day counts are resolved by the caller before the
// snapshot reaches the engine). This invariant is what makes the
// content-addressed memoization in Memoized safe.
//
// ERROR HANDLING:
//
// The engine recognizes exactly one failure mode: a malformed snapshot
// (MalformedSnapshotError). That is a contract violation by the caller,
// reported loudly and never papered over with defaults. The engine never
// logs and never retries; nothing inside it is transient.
package insight
