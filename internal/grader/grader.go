// Package grader turns search candidates into binary relevance
// verdicts using an external judge.
package grader

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/peoplebench/people-bench/internal/dataset"
	apperrors "github.com/peoplebench/people-bench/internal/pkg/errors"
	"github.com/peoplebench/people-bench/internal/pkg/logger"
	"github.com/peoplebench/people-bench/internal/pkg/resilience"
	"github.com/peoplebench/people-bench/internal/searcher"
)

func isJudgeError(err error) bool {
	return apperrors.Is(err, apperrors.CodeJudgeError)
}

// Grader grades candidate lists against query expectations. The judge
// concurrency cap is shared across the whole run so grading load
// stays bounded no matter how many searchers are in flight.
type Grader struct {
	judge Judge
	exec  *resilience.Executor
	sem   *semaphore.Weighted
	log   *logger.Logger
	obs   Observer
}

// Observer receives grading outcomes for run metrics.
type Observer interface {
	ObserveGrade(elapsed time.Duration, graded bool)
}

// New creates a grader. concurrency bounds simultaneous judge calls.
func New(judge Judge, exec *resilience.Executor, concurrency int, log *logger.Logger) *Grader {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logger.Default()
	}
	return &Grader{
		judge: judge,
		exec:  exec,
		sem:   semaphore.NewWeighted(int64(concurrency)),
		log:   log,
	}
}

// classify marks judge failures that are worth another attempt:
// transport-level errors and unparseable responses.
func classify(err error) resilience.Classification {
	return resilience.Classification{
		Retryable:     searcher.Transient(err) || isJudgeError(err),
		RecordFailure: true,
	}
}

// GradePair grades all candidates of one (query, searcher) pair.
// Candidates are graded concurrently; verdicts come back in rank order
// regardless of completion order. A candidate whose judge call keeps
// failing yields an ungraded placeholder, never a defaulted verdict.
func (g *Grader) GradePair(ctx context.Context, q dataset.Query, searcherName string, candidates []searcher.Candidate) PairResult {
	pair := PairResult{
		QueryID:  q.ID,
		Searcher: searcherName,
		Verdicts: make([]Verdict, len(candidates)),
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		rank := i + 1
		candidate := c

		eg.Go(func() error {
			if err := g.sem.Acquire(ctx, 1); err != nil {
				pair.Verdicts[rank-1] = ungraded(q.ID, searcherName, rank, candidate.URL)
				return nil
			}
			defer g.sem.Release(1)

			pair.Verdicts[rank-1] = g.gradeOne(ctx, q, searcherName, rank, candidate)
			return nil
		})
	}
	// Workers never return errors; ungraded placeholders carry failure.
	_ = eg.Wait()

	return pair
}

// SetObserver attaches a metrics recorder. Must be called before any
// GradePair call.
func (g *Grader) SetObserver(obs Observer) {
	g.obs = obs
}

func (g *Grader) observe(elapsed time.Duration, graded bool) {
	if g.obs != nil {
		g.obs.ObserveGrade(elapsed, graded)
	}
}

func (g *Grader) gradeOne(ctx context.Context, q dataset.Query, searcherName string, rank int, c searcher.Candidate) Verdict {
	var judgment Judgment

	start := time.Now()
	err := g.exec.Execute(ctx, "judge", func(ctx context.Context) error {
		var judgeErr error
		judgment, judgeErr = g.judge.Judge(ctx, q, c)
		return judgeErr
	}, classify)
	g.observe(time.Since(start), err == nil)
	if err != nil {
		g.log.WithSearcher(searcherName).WithQuery(q.ID).WithError(err).
			Warn("grading failed, recording ungraded", "rank", rank)
		return ungraded(q.ID, searcherName, rank, c.URL)
	}

	match := 0
	if judgment.Match {
		match = 1
	}
	return Verdict{
		QueryID:   q.ID,
		Searcher:  searcherName,
		Rank:      rank,
		URL:       c.URL,
		Match:     match,
		Graded:    true,
		Rationale: judgment.Rationale,
	}
}

func ungraded(queryID, searcherName string, rank int, url string) Verdict {
	return Verdict{
		QueryID:  queryID,
		Searcher: searcherName,
		Rank:     rank,
		URL:      url,
		Graded:   false,
	}
}
