// Package report renders benchmark results as a JSON document and a
// human-readable summary table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/peoplebench/people-bench/internal/benchmark"
	"github.com/peoplebench/people-bench/internal/evaluation"
	"github.com/peoplebench/people-bench/internal/grader"
	"github.com/peoplebench/people-bench/internal/pkg/errors"
)

// RunInfo echoes the settings a run was executed with, so a stored
// report is interpretable without the original config file.
type RunInfo struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	QueryCount int       `json:"query_count"`
	NumResults int       `json:"num_results"`
	Searchers  []string  `json:"searchers"`
	Dataset    string    `json:"dataset,omitempty"`
	JudgeModel string    `json:"judge_model,omitempty"`
}

// Report is the persisted result document.
type Report struct {
	Run       RunInfo              `json:"run"`
	Summaries []evaluation.Summary `json:"summaries"`
	Verdicts  []grader.PairResult  `json:"verdicts,omitempty"`
}

// Options controls report assembly.
type Options struct {
	Dataset         string
	JudgeModel      string
	NumResults      int
	IncludeVerdicts bool
}

// FromResult assembles a report from a finished run.
func FromResult(result *benchmark.Result, opts Options) *Report {
	r := &Report{
		Run: RunInfo{
			RunID:      result.RunID,
			StartedAt:  result.StartedAt,
			FinishedAt: result.FinishedAt,
			QueryCount: result.QueryCount,
			NumResults: opts.NumResults,
			Searchers:  result.Searchers,
			Dataset:    opts.Dataset,
			JudgeModel: opts.JudgeModel,
		},
		Summaries: result.Summaries,
	}
	if opts.IncludeVerdicts {
		r.Verdicts = result.Pairs
	}
	return r
}

// FromPairs assembles a report by re-aggregating a verdict log.
func FromPairs(pairs []grader.PairResult, policy string, opts Options) *Report {
	summaries := evaluation.Summarize(pairs, policy)

	seen := map[string]bool{}
	var searchers []string
	queries := map[string]bool{}
	for _, p := range pairs {
		if !seen[p.Searcher] {
			seen[p.Searcher] = true
			searchers = append(searchers, p.Searcher)
		}
		queries[p.QueryID] = true
	}
	sort.Strings(searchers)

	r := &Report{
		Run: RunInfo{
			QueryCount: len(queries),
			NumResults: opts.NumResults,
			Searchers:  searchers,
			Dataset:    opts.Dataset,
			JudgeModel: opts.JudgeModel,
		},
		Summaries: summaries,
	}
	if opts.IncludeVerdicts {
		r.Verdicts = pairs
	}
	return r
}

// WriteJSON writes the report as indented JSON to path.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.InternalError("encoding report", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.InternalError("writing report", err)
	}
	return nil
}

// WriteTable renders the per-searcher summary table.
func (r *Report) WriteTable(w io.Writer) error {
	var sb strings.Builder

	if r.Run.RunID != "" {
		fmt.Fprintf(&sb, "run %s: %d queries", r.Run.RunID, r.Run.QueryCount)
		if !r.Run.FinishedAt.IsZero() {
			fmt.Fprintf(&sb, " in %s", r.Run.FinishedAt.Sub(r.Run.StartedAt).Round(time.Millisecond))
		}
		sb.WriteString("\n\n")
	}

	const rowFormat = "%-12s %9s %10s %10s %8s\n"
	fmt.Fprintf(&sb, rowFormat, "SEARCHER", "RECALL@1", "RECALL@10", "PRECISION", "QUERIES")

	for _, s := range r.Summaries {
		fmt.Fprintf(&sb, rowFormat,
			s.Searcher,
			formatMetric(s.RecallAt1),
			formatMetric(s.RecallAt10),
			formatMetric(s.Precision),
			fmt.Sprintf("%d", s.QueryCount),
		)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formatMetric(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
