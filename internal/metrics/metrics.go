package metrics

import (
	"os"
	"time"
)

// Metrics holds all benchmark run metrics.
type Metrics struct {
	// Search metrics
	SearchRequests *CounterVec   // labels: searcher
	SearchFailures *CounterVec   // labels: searcher
	SearchLatency  *HistogramVec // labels: searcher
	SearchResults  *Histogram

	// Cache metrics
	CacheHits   *CounterVec // labels: searcher
	CacheMisses *CounterVec // labels: searcher

	// Grading metrics
	GradeRequests *Counter
	GradeFailures *Counter // candidates left ungraded after retries
	GradeLatency  *Histogram

	// Enrichment metrics
	EnrichRequests *Counter

	// Bus metrics
	BusEventsPublished *CounterVec // labels: topic

	// In-flight search calls across all searchers.
	InFlightSearches *Gauge

	startTime time.Time
}

// New creates a metrics instance with all metrics initialized.
func New() *Metrics {
	latencyBuckets := []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

	return &Metrics{
		SearchRequests: NewCounterVec(
			"pb_search_requests_total",
			"Total number of search calls per searcher",
			[]string{"searcher"},
		),
		SearchFailures: NewCounterVec(
			"pb_search_failures_total",
			"Search calls that failed after retries",
			[]string{"searcher"},
		),
		SearchLatency: NewHistogramVec(
			"pb_search_latency_ms",
			"Search call latency in milliseconds",
			[]string{"searcher"},
			latencyBuckets,
		),
		SearchResults: NewHistogram(
			"pb_search_results",
			"Number of candidates returned per search",
			[]float64{0, 1, 2, 5, 10, 20, 50},
		),
		CacheHits: NewCounterVec(
			"pb_cache_hits_total",
			"Search result cache hits",
			[]string{"searcher"},
		),
		CacheMisses: NewCounterVec(
			"pb_cache_misses_total",
			"Search result cache misses",
			[]string{"searcher"},
		),
		GradeRequests: NewCounter(
			"pb_grade_requests_total",
			"Total number of judge calls",
			nil,
		),
		GradeFailures: NewCounter(
			"pb_grade_failures_total",
			"Candidates recorded as ungraded after judge retries",
			nil,
		),
		GradeLatency: NewHistogram(
			"pb_grade_latency_ms",
			"Judge call latency in milliseconds",
			latencyBuckets,
		),
		EnrichRequests: NewCounter(
			"pb_enrich_requests_total",
			"Content enrichment batches requested",
			nil,
		),
		BusEventsPublished: NewCounterVec(
			"pb_bus_events_published_total",
			"Events published to the run bus",
			[]string{"topic"},
		),
		InFlightSearches: NewGauge(
			"pb_in_flight_searches",
			"Search calls currently in flight",
			nil,
		),
		startTime: time.Now(),
	}
}

// ObserveSearch records one completed search call.
func (m *Metrics) ObserveSearch(searcherName string, elapsed time.Duration, resultCount int, err error) {
	m.SearchRequests.WithLabels(searcherName).Inc()
	m.SearchLatency.WithLabels(searcherName).Observe(float64(elapsed.Milliseconds()))
	if err != nil {
		m.SearchFailures.WithLabels(searcherName).Inc()
		return
	}
	m.SearchResults.Observe(float64(resultCount))
}

// ObserveGrade records one completed judge call.
func (m *Metrics) ObserveGrade(elapsed time.Duration, graded bool) {
	m.GradeRequests.Inc()
	m.GradeLatency.Observe(float64(elapsed.Milliseconds()))
	if !graded {
		m.GradeFailures.Inc()
	}
}

// Uptime returns the time elapsed since the metrics were created.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// WriteFile dumps the Prometheus text exposition to a file.
func (m *Metrics) WriteFile(path string) error {
	return os.WriteFile(path, []byte(m.PrometheusFormat()), 0o644)
}
