package benchmark

import (
	"context"
	"io"
	"time"

	"github.com/peoplebench/people-bench/internal/bus"
	"github.com/peoplebench/people-bench/internal/cache"
	"github.com/peoplebench/people-bench/internal/config"
	"github.com/peoplebench/people-bench/internal/dataset"
	"github.com/peoplebench/people-bench/internal/enrich"
	"github.com/peoplebench/people-bench/internal/grader"
	"github.com/peoplebench/people-bench/internal/metrics"
	"github.com/peoplebench/people-bench/internal/pkg/errors"
	"github.com/peoplebench/people-bench/internal/pkg/hash"
	"github.com/peoplebench/people-bench/internal/pkg/logger"
	"github.com/peoplebench/people-bench/internal/pkg/resilience"
	"github.com/peoplebench/people-bench/internal/searcher"
	"github.com/peoplebench/people-bench/internal/searcher/brave"
	"github.com/peoplebench/people-bench/internal/searcher/exa"
	"github.com/peoplebench/people-bench/internal/searcher/parallel"
	"github.com/peoplebench/people-bench/internal/searcher/qdrantindex"
)

// Runner owns the lifecycle of one benchmark execution: it builds the
// searcher registry and all collaborators from configuration, runs the
// orchestrator, and releases resources on Close.
type Runner struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics

	registry     *searcher.Registry
	orchestrator *Orchestrator
	bus          bus.Bus
	cache        cache.Cache

	closers []io.Closer
}

// NewRunner wires a runner from configuration. Backends without an API
// key are skipped with a warning; selecting a skipped backend by name
// fails at dispatch time with a configuration error.
func NewRunner(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Runner, error) {
	if log == nil {
		log = logger.Default()
	}

	r := &Runner{cfg: cfg, log: log, metrics: metrics.New()}

	registry, err := r.buildRegistry()
	if err != nil {
		r.Close()
		return nil, err
	}
	r.registry = registry

	judge, err := grader.NewOpenAIJudge(grader.OpenAIJudgeConfig{
		APIKey:      cfg.Judge.APIKey,
		BaseURL:     cfg.Judge.BaseURL,
		Model:       cfg.Judge.Model,
		Temperature: cfg.Judge.Temperature,
	})
	if err != nil {
		r.Close()
		return nil, err
	}

	exec := resilience.NewExecutor(resilience.Config{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: cfg.Retry.InitialBackoff,
		MaxBackoff:     cfg.Retry.MaxBackoff,
		BreakerEnabled: cfg.Retry.BreakerEnabled,
	}, log)

	resultCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		r.Close()
		return nil, err
	}
	if resultCache != nil {
		r.cache = resultCache
		r.closers = append(r.closers, resultCache)
	}

	runBus, err := bus.New(cfg.Bus, log)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.bus = runBus

	if cfg.Report.VerdictLog != "" {
		vl, err := bus.NewVerdictLog(runBus, cfg.Report.VerdictLog)
		if err != nil {
			runBus.Close()
			r.Close()
			return nil, err
		}
		r.closers = append(r.closers, vl)
	}
	// Registered after the log so Close drains the bus before the log
	// file goes away. In-flight pair events must land in the file.
	r.closers = append(r.closers, runBus)

	var enricher *enrich.Enricher
	if cfg.Run.EnrichContents {
		enricher = enrich.New(enrich.Config{
			APIKey:  cfg.Searchers.Exa.APIKey,
			BaseURL: cfg.Searchers.Exa.BaseURL,
		}, log)
		if enricher == nil {
			log.Warn("content enrichment requested but no Exa API key is set, grading on snippets")
		}
	}

	g := grader.New(judge, exec, cfg.Run.GradeConcurrency, log)
	g.SetObserver(r.metrics)

	r.orchestrator = NewOrchestrator(OrchestratorConfig{
		Registry:       registry,
		Grader:         g,
		Enricher:       enricher,
		Cache:          r.cache,
		Executor:       exec,
		Bus:            runBus,
		Metrics:        r.metrics,
		Log:            log,
		NumResults:     cfg.Run.NumResults,
		Concurrency:    cfg.Run.Concurrency,
		UngradedPolicy: cfg.Run.UngradedPolicy,
	})

	return r, nil
}

// buildRegistry registers every backend whose credentials are present.
func (r *Runner) buildRegistry() (*searcher.Registry, error) {
	cfg := r.cfg
	registry := searcher.NewRegistry()

	if cfg.Searchers.Exa.APIKey != "" {
		s, err := exa.New(exa.Config{
			APIKey:     cfg.Searchers.Exa.APIKey,
			BaseURL:    cfg.Searchers.Exa.BaseURL,
			Category:   cfg.Searchers.Exa.Category,
			SearchType: cfg.Searchers.Exa.SearchType,
			RateLimit:  cfg.Searchers.Exa.RateLimit,
		})
		if err != nil {
			return nil, err
		}
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	} else {
		r.log.Warn("EXA_API_KEY not set, exa searcher unavailable")
	}

	if cfg.Searchers.Brave.APIKey != "" {
		s, err := brave.New(brave.Config{
			APIKey:     cfg.Searchers.Brave.APIKey,
			BaseURL:    cfg.Searchers.Brave.BaseURL,
			SiteFilter: cfg.Searchers.Brave.SiteFilter,
			RateLimit:  cfg.Searchers.Brave.RateLimit,
		})
		if err != nil {
			return nil, err
		}
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	} else {
		r.log.Warn("BRAVE_SEARCH_API_KEY not set, brave searcher unavailable")
	}

	if cfg.Searchers.Parallel.APIKey != "" {
		s, err := parallel.New(parallel.Config{
			APIKey:         cfg.Searchers.Parallel.APIKey,
			BaseURL:        cfg.Searchers.Parallel.BaseURL,
			Processor:      cfg.Searchers.Parallel.Processor,
			IncludeDomains: cfg.Searchers.Parallel.IncludeDomains,
			RateLimit:      cfg.Searchers.Parallel.RateLimit,
		})
		if err != nil {
			return nil, err
		}
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	} else {
		r.log.Warn("PARALLEL_API_KEY not set, parallel searcher unavailable")
	}

	// The index backend needs the judge key for query embeddings; it is
	// only registered when explicitly selected.
	if selected(cfg.Run.Searchers, "index") {
		embedder, err := qdrantindex.NewOpenAIEmbedder(cfg.Judge.APIKey, cfg.Judge.BaseURL, cfg.Searchers.Index.EmbedModel)
		if err != nil {
			return nil, err
		}
		s, err := qdrantindex.New(qdrantindex.Config{
			Host:       cfg.Searchers.Index.Host,
			Port:       cfg.Searchers.Index.Port,
			APIKey:     cfg.Searchers.Index.APIKey,
			UseTLS:     cfg.Searchers.Index.UseTLS,
			Collection: cfg.Searchers.Index.Collection,
		}, embedder)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(s); err != nil {
			return nil, err
		}
		r.closers = append(r.closers, s)
	}

	if len(registry.Names()) == 0 {
		return nil, errors.ConfigError("no searcher backends available: set at least one API key")
	}
	return registry, nil
}

func selected(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Run loads the dataset and executes the benchmark.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	queries, err := dataset.Load(r.cfg.Dataset.Path, r.cfg.Run.Limit, r.log)
	if err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return nil, errors.ConfigError("dataset contains no usable queries")
	}

	runID := hash.RunID(time.Now().Format(time.RFC3339Nano))
	r.log.Info("starting benchmark run",
		"run_id", runID,
		"queries", len(queries),
		"searchers", r.cfg.Run.Searchers,
		"num_results", r.cfg.Run.NumResults,
	)

	result, err := r.orchestrator.Run(ctx, runID, queries, r.cfg.Run.Searchers)
	if err != nil {
		return nil, err
	}

	if path := r.cfg.Report.MetricsOut; path != "" {
		if err := r.metrics.WriteFile(path); err != nil {
			r.log.WithError(err).Warn("writing metrics file failed", "path", path)
		}
	}

	return result, nil
}

// Metrics exposes the run metrics for reporting.
func (r *Runner) Metrics() *metrics.Metrics {
	return r.metrics
}

// Searchers lists the registered backend names.
func (r *Runner) Searchers() []string {
	if r.registry == nil {
		return nil
	}
	return r.registry.Names()
}

// Close releases all resources in reverse construction order.
func (r *Runner) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}
