package insight

import "sync"

// Memoized wraps an Analyzer with a content-addressed result cache.
//
// The cache key is the snapshot fingerprint, which is safe because
// Analyze is deterministic: equal snapshots yield equal Reports, so a
// cached Report is indistinguishable from a fresh one. The wrapper is
// opt-in; the core Analyzer stays pure and cache-free.
//
// Thread-safety: safe for concurrent use. Concurrent misses on the same
// fingerprint may both compute; the duplicated work is harmless since
// both compute the identical Report.
//
// The cache is unbounded. Callers analyzing unbounded snapshot streams
// should create a fresh Memoized per batch rather than holding one for
// the process lifetime.
type Memoized[S Snapshot] struct {
	analyzer *Analyzer[S]
	kind     string

	mu    sync.RWMutex
	cache map[string]Report
}

// NewMemoized wraps analyzer with a result cache keyed on kind-scoped
// snapshot fingerprints.
func NewMemoized[S Snapshot](kind string, analyzer *Analyzer[S]) *Memoized[S] {
	return &Memoized[S]{
		analyzer: analyzer,
		kind:     kind,
		cache:    make(map[string]Report),
	}
}

// Analyze returns the cached Report for the snapshot's fingerprint, or
// computes, caches, and returns a fresh one.
//
// A malformed snapshot fails before fingerprinting and is never cached.
func (m *Memoized[S]) Analyze(snapshot S) (Report, error) {
	if err := snapshot.Validate(); err != nil {
		return Report{}, err
	}

	fp, err := Fingerprint(m.kind, snapshot)
	if err != nil {
		return Report{}, err
	}

	m.mu.RLock()
	cached, ok := m.cache[fp]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	report, err := m.analyzer.Analyze(snapshot)
	if err != nil {
		return Report{}, err
	}

	m.mu.Lock()
	m.cache[fp] = report
	m.mu.Unlock()

	return report, nil
}

// Size returns the number of cached reports. Used for testing.
func (m *Memoized[S]) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}
