package insight

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeCountingAnalyzer returns an analyzer plus a counter of how many
// times its rules actually executed.
func makeCountingAnalyzer(t *testing.T) (*Analyzer[probe], *atomic.Int64) {
	t.Helper()

	var evals atomic.Int64
	rules := MustRuleSet(Rule[probe]{
		ID: "counted",
		Eval: func(p probe) *Insight {
			evals.Add(1)
			if !p.Flag {
				return nil
			}
			return &Insight{ID: "counted", Kind: KindSuccess, Title: "ok"}
		},
	})
	actions := MustActionSet(ActionRule[probe]{
		ID:   "noop",
		Eval: func(probe) *SuggestedAction { return nil },
	})
	scorecard := MustScorecard[probe](50, constant("zero", 0))

	return MustAnalyzer(rules, actions, scorecard), &evals
}

func TestMemoized_CachesByFingerprint(t *testing.T) {
	analyzer, evals := makeCountingAnalyzer(t)
	memo := NewMemoized("probe", analyzer)

	snap := probe{Flag: true, Count: 1, Label: "x"}

	first, err := memo.Analyze(snap)
	require.NoError(t, err)
	second, err := memo.Analyze(snap)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), evals.Load(), "second call must be served from cache")
	assert.Equal(t, 1, memo.Size())
}

func TestMemoized_DistinctSnapshotsDistinctEntries(t *testing.T) {
	analyzer, _ := makeCountingAnalyzer(t)
	memo := NewMemoized("probe", analyzer)

	_, err := memo.Analyze(probe{Flag: true, Count: 1})
	require.NoError(t, err)
	_, err = memo.Analyze(probe{Flag: true, Count: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, memo.Size())
}

func TestMemoized_MalformedSnapshotNotCached(t *testing.T) {
	analyzer, _ := makeCountingAnalyzer(t)
	memo := NewMemoized("probe", analyzer)

	_, err := memo.Analyze(probe{Count: -1})
	require.Error(t, err)
	assert.True(t, IsMalformedSnapshot(err))
	assert.Equal(t, 0, memo.Size())
}

func TestMemoized_ConcurrentAnalyses(t *testing.T) {
	analyzer, _ := makeCountingAnalyzer(t)
	memo := NewMemoized("probe", analyzer)

	want, err := analyzer.Analyze(probe{Flag: true, Count: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := memo.Analyze(probe{Flag: true, Count: 1})
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, memo.Size())
}
