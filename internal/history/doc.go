// Package history provides durable storage for analysis runs.
//
// Every CLI analysis can be recorded as a run: which entity was
// analyzed, the snapshot fingerprint, the score, and the full report
// JSON. The trail answers "what did we tell the operator, and when"
// without re-running anything.
//
// ARCHITECTURE
//
// SQLite with WAL mode, a single writer connection, and an embedded
// schema applied on Open. Writes are idempotent: a run is keyed by
// (entity, label, fingerprint), and because analysis is deterministic
// a duplicate insert carries the exact same report, so ON CONFLICT DO
// NOTHING loses no information.
//
// INVARIANTS
//
//   - Reads are deterministically ordered (recorded_at, then id with
//     binary collation) so listings are stable across processes.
//   - The store never inspects or rewrites report JSON; it is opaque
//     payload written and read verbatim.
package history
