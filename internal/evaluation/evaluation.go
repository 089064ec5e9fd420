// Package evaluation reduces verdict streams into per-searcher
// retrieval metrics.
package evaluation

import (
	"sort"
	"sync"

	"github.com/peoplebench/people-bench/internal/config"
	"github.com/peoplebench/people-bench/internal/grader"
)

// Summary is the per-searcher aggregate. Derived, recomputable, never
// mutated after creation.
type Summary struct {
	Searcher   string  `json:"searcher"`
	RecallAt1  float64 `json:"recall_at_1"`
	RecallAt10 float64 `json:"recall_at_10"`
	Precision  float64 `json:"precision"`
	QueryCount int     `json:"query_count"`
}

// tally is the running per-searcher accumulation. Pairs only add
// counts, so reduction order never affects the result.
type tally struct {
	queries  int // recall denominator
	hitsAt1  int
	hitsAt10 int
	matches  int // precision numerator
	graded   int // precision denominator
}

// Aggregator reduces pair results into summaries. The reduction is
// pure: replaying a persisted verdict log reproduces identical
// summaries regardless of arrival order.
type Aggregator struct {
	policy string

	mu         sync.Mutex
	bySearcher map[string]*tally
}

// NewAggregator creates an aggregator under the given ungraded-pair
// policy (config.UngradedExclude or config.UngradedZero).
func NewAggregator(policy string) *Aggregator {
	if policy == "" {
		policy = config.UngradedExclude
	}
	return &Aggregator{
		policy:     policy,
		bySearcher: make(map[string]*tally),
	}
}

// Add folds one (query, searcher) pair into the running tallies.
func (a *Aggregator) Add(pair grader.PairResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.bySearcher[pair.Searcher]
	if !ok {
		t = &tally{}
		a.bySearcher[pair.Searcher] = t
	}

	// A search that returned nothing is a miss, not a gap: it counts
	// against both recall metrics and adds nothing to precision.
	if len(pair.Verdicts) == 0 {
		t.queries++
		return
	}

	graded := 0
	matches := 0
	hitAt1 := false
	hitAt10 := false

	for _, v := range pair.Verdicts {
		if !v.Graded && a.policy == config.UngradedExclude {
			continue
		}
		// Under the zero policy an ungraded verdict counts as a miss.
		match := v.Graded && v.Match == 1

		graded++
		if match {
			matches++
			if v.Rank == 1 {
				hitAt1 = true
			}
			if v.Rank <= 10 {
				hitAt10 = true
			}
		}
	}

	// A pair whose every candidate ended up ungraded carries no
	// signal; it is excluded from the denominators entirely.
	if graded == 0 {
		return
	}

	t.queries++
	if hitAt1 {
		t.hitsAt1++
	}
	if hitAt10 {
		t.hitsAt10++
	}
	t.matches += matches
	t.graded += graded
}

// Merge folds another aggregator's tallies into this one. Used when
// workers accumulate per-searcher and merge at the end of the run.
func (a *Aggregator) Merge(other *Aggregator) {
	other.mu.Lock()
	defer other.mu.Unlock()
	a.mu.Lock()
	defer a.mu.Unlock()

	for name, src := range other.bySearcher {
		dst, ok := a.bySearcher[name]
		if !ok {
			dst = &tally{}
			a.bySearcher[name] = dst
		}
		dst.queries += src.queries
		dst.hitsAt1 += src.hitsAt1
		dst.hitsAt10 += src.hitsAt10
		dst.matches += src.matches
		dst.graded += src.graded
	}
}

// Summaries returns one summary per searcher, sorted by name.
func (a *Aggregator) Summaries() []Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	summaries := make([]Summary, 0, len(a.bySearcher))
	for name, t := range a.bySearcher {
		s := Summary{
			Searcher:   name,
			QueryCount: t.queries,
		}
		if t.queries > 0 {
			s.RecallAt1 = float64(t.hitsAt1) / float64(t.queries)
			s.RecallAt10 = float64(t.hitsAt10) / float64(t.queries)
		}
		if t.graded > 0 {
			s.Precision = float64(t.matches) / float64(t.graded)
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Searcher < summaries[j].Searcher
	})
	return summaries
}

// Summarize reduces a complete pair set in one call.
func Summarize(pairs []grader.PairResult, policy string) []Summary {
	agg := NewAggregator(policy)
	for _, p := range pairs {
		agg.Add(p)
	}
	return agg.Summaries()
}
