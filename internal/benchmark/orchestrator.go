// Package benchmark runs the query-dispatch and grading pipeline and
// reduces the verdicts into per-searcher summaries.
package benchmark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/peoplebench/people-bench/internal/bus"
	"github.com/peoplebench/people-bench/internal/cache"
	"github.com/peoplebench/people-bench/internal/dataset"
	"github.com/peoplebench/people-bench/internal/enrich"
	"github.com/peoplebench/people-bench/internal/evaluation"
	"github.com/peoplebench/people-bench/internal/grader"
	"github.com/peoplebench/people-bench/internal/metrics"
	"github.com/peoplebench/people-bench/internal/pkg/logger"
	"github.com/peoplebench/people-bench/internal/pkg/resilience"
	"github.com/peoplebench/people-bench/internal/searcher"
)

// Orchestrator dispatches every query to every selected searcher,
// grades the candidates, and aggregates the verdicts. One failing
// (query, searcher) pair never takes down the run.
type Orchestrator struct {
	registry *searcher.Registry
	grader   *grader.Grader
	enricher *enrich.Enricher // nil disables enrichment
	cache    cache.Cache      // nil disables caching
	exec     *resilience.Executor
	bus      bus.Bus
	metrics  *metrics.Metrics
	log      *logger.Logger

	numResults  int
	concurrency int
	policy      string
}

// OrchestratorConfig wires an orchestrator's collaborators.
type OrchestratorConfig struct {
	Registry *searcher.Registry
	Grader   *grader.Grader
	Enricher *enrich.Enricher
	Cache    cache.Cache
	Executor *resilience.Executor
	Bus      bus.Bus
	Metrics  *metrics.Metrics
	Log      *logger.Logger

	NumResults int
	// Concurrency bounds in-flight queries per searcher.
	Concurrency int
	// UngradedPolicy controls how judge-failure verdicts affect metrics.
	UngradedPolicy string
}

// Result holds everything a finished run produced.
type Result struct {
	RunID      string               `json:"run_id"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	QueryCount int                  `json:"query_count"`
	Searchers  []string             `json:"searchers"`
	Summaries  []evaluation.Summary `json:"summaries"`
	Pairs      []grader.PairResult  `json:"-"`
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.NumResults < 1 {
		cfg.NumResults = 10
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Log == nil {
		cfg.Log = logger.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	return &Orchestrator{
		registry:    cfg.Registry,
		grader:      cfg.Grader,
		enricher:    cfg.Enricher,
		cache:       cfg.Cache,
		exec:        cfg.Executor,
		bus:         cfg.Bus,
		metrics:     cfg.Metrics,
		log:         cfg.Log,
		numResults:  cfg.NumResults,
		concurrency: cfg.Concurrency,
		policy:      cfg.UngradedPolicy,
	}
}

// Run executes the benchmark over the given queries and searcher
// names. Unknown searcher names fail here, before any API call.
func (o *Orchestrator) Run(ctx context.Context, runID string, queries []dataset.Query, searcherNames []string) (*Result, error) {
	searchers, err := o.registry.Resolve(searcherNames)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      runID,
		StartedAt:  time.Now(),
		QueryCount: len(queries),
	}
	for _, s := range searchers {
		result.Searchers = append(result.Searchers, s.Name())
	}

	o.publish(ctx, bus.TopicRunStarted, runID, map[string]any{
		"query_count": len(queries),
		"searchers":   result.Searchers,
	})

	agg := evaluation.NewAggregator(o.policy)
	var mu sync.Mutex
	var pairs []grader.PairResult

	// Searchers progress independently: a slow or rate-limited backend
	// never blocks the others.
	eg, egCtx := errgroup.WithContext(ctx)
	for _, s := range searchers {
		s := s
		eg.Go(func() error {
			o.runSearcher(egCtx, runID, s, queries, func(pair grader.PairResult) {
				agg.Add(pair)
				mu.Lock()
				pairs = append(pairs, pair)
				mu.Unlock()
			})
			return nil
		})
	}
	// Worker functions swallow per-pair failures; only context
	// cancellation can surface here.
	_ = eg.Wait()

	result.FinishedAt = time.Now()
	result.Summaries = agg.Summaries()
	result.Pairs = pairs

	o.publish(ctx, bus.TopicRunFinished, runID, map[string]any{
		"duration_ms": result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"pair_count":  len(pairs),
	})

	if err := ctx.Err(); err != nil {
		o.log.Warn("run interrupted, summaries cover completed pairs only")
	}
	return result, nil
}

// runSearcher drives all queries for one searcher under its own
// concurrency cap.
func (o *Orchestrator) runSearcher(ctx context.Context, runID string, s searcher.Searcher, queries []dataset.Query, collect func(grader.PairResult)) {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.concurrency)

	for _, q := range queries {
		q := q
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if pair, ok := o.runPair(ctx, runID, s, q); ok {
				collect(pair)
			}
			return nil
		})
	}
	_ = eg.Wait()
}

// runPair handles one (query, searcher) pair end to end: search,
// enrich, grade, publish. A failed search yields an empty pair, which
// the aggregator counts as a recall miss. A pair abandoned because the
// run was cancelled is dropped entirely; it never becomes a recorded
// result.
func (o *Orchestrator) runPair(ctx context.Context, runID string, s searcher.Searcher, q dataset.Query) (grader.PairResult, bool) {
	log := o.log.WithSearcher(s.Name()).WithQuery(q.ID)

	candidates, err := o.search(ctx, s, q)
	if err != nil {
		if ctx.Err() != nil {
			return grader.PairResult{}, false
		}
		log.WithError(err).Warn("search failed, recording zero candidates")
		pair := grader.PairResult{QueryID: q.ID, Searcher: s.Name()}
		o.publish(ctx, bus.TopicSearchFailed, runID, map[string]any{
			"query_id": q.ID,
			"searcher": s.Name(),
			"error":    err.Error(),
		})
		o.publish(ctx, bus.TopicPairGraded, runID, pair)
		return pair, true
	}

	if o.enricher != nil && len(candidates) > 0 {
		o.metrics.EnrichRequests.Inc()
		candidates = o.enricher.Enrich(ctx, candidates)
	}

	pair := o.grader.GradePair(ctx, q, s.Name(), candidates)
	if ctx.Err() != nil && !fullyGraded(pair) {
		return grader.PairResult{}, false
	}
	o.publish(ctx, bus.TopicPairGraded, runID, pair)
	return pair, true
}

// fullyGraded reports whether every verdict carries a real judgment.
// Cancellation leaves ungraded placeholders behind; a pair that still
// finished all its judge calls counts even if the run was cancelled
// moments later.
func fullyGraded(pair grader.PairResult) bool {
	for _, v := range pair.Verdicts {
		if !v.Graded {
			return false
		}
	}
	return true
}

// search runs one backend call behind the cache and the retry policy.
func (o *Orchestrator) search(ctx context.Context, s searcher.Searcher, q dataset.Query) ([]searcher.Candidate, error) {
	if o.cache != nil {
		if cached, ok := o.cache.Get(ctx, s.Name(), q.Text, o.numResults); ok {
			o.metrics.CacheHits.WithLabels(s.Name()).Inc()
			return cached, nil
		}
		o.metrics.CacheMisses.WithLabels(s.Name()).Inc()
	}

	o.metrics.InFlightSearches.Inc()
	defer o.metrics.InFlightSearches.Dec()

	var candidates []searcher.Candidate
	start := time.Now()
	err := o.exec.Execute(ctx, "search:"+s.Name(), func(ctx context.Context) error {
		var searchErr error
		candidates, searchErr = s.Search(ctx, q.Text, o.numResults)
		return searchErr
	}, searchClassifier)
	o.metrics.ObserveSearch(s.Name(), time.Since(start), len(candidates), err)

	if err != nil {
		return nil, err
	}

	if o.cache != nil {
		o.cache.Set(ctx, s.Name(), q.Text, o.numResults, candidates)
	}
	return candidates, nil
}

// searchClassifier retries rate limits, timeouts, and server errors;
// auth and request errors fail immediately.
func searchClassifier(err error) resilience.Classification {
	return resilience.Classification{
		Retryable:     searcher.Transient(err),
		RecordFailure: true,
	}
}

func (o *Orchestrator) publish(ctx context.Context, topic, runID string, payload any) {
	if o.bus == nil {
		return
	}
	event := bus.NewEvent(fmt.Sprintf("%s-%d", runID, time.Now().UnixNano()), topic, runID, payload)
	if err := o.bus.Publish(ctx, topic, event); err != nil {
		o.log.WithError(err).Warn("event publish failed", "topic", topic)
		return
	}
	o.metrics.BusEventsPublished.WithLabels(topic).Inc()
}
