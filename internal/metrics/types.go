// Package metrics tracks benchmark run counters and latency
// histograms, exported in Prometheus text format.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Counter is a monotonically increasing metric.
type Counter struct {
	name   string
	help   string
	labels map[string]string
	value  atomic.Int64
}

// NewCounter creates a counter. labels may be nil.
func NewCounter(name, help string, labels map[string]string) *Counter {
	if labels == nil {
		labels = map[string]string{}
	}
	return &Counter{name: name, help: help, labels: labels}
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Add increases the counter. Negative deltas are ignored; counters
// only move forward.
func (c *Counter) Add(delta int64) {
	if delta > 0 {
		c.value.Add(delta)
	}
}

// Value returns the current count.
func (c *Counter) Value() int64 { return c.value.Load() }

// Name returns the metric name.
func (c *Counter) Name() string { return c.name }

// Help returns the metric help text.
func (c *Counter) Help() string { return c.help }

// Labels returns a copy of the metric labels.
func (c *Counter) Labels() map[string]string { return copyLabels(c.labels) }

// Gauge is a metric that moves in both directions.
type Gauge struct {
	name   string
	help   string
	labels map[string]string
	value  atomic.Int64
}

// NewGauge creates a gauge. labels may be nil.
func NewGauge(name, help string, labels map[string]string) *Gauge {
	if labels == nil {
		labels = map[string]string{}
	}
	return &Gauge{name: name, help: help, labels: labels}
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() {
	g.value.Add(1)
}

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() {
	g.value.Add(-1)
}

// Value returns the current gauge value.
func (g *Gauge) Value() float64 { return float64(g.value.Load()) }

// Name returns the metric name.
func (g *Gauge) Name() string { return g.name }

// Help returns the metric help text.
func (g *Gauge) Help() string { return g.help }

// Labels returns a copy of the metric labels.
func (g *Gauge) Labels() map[string]string { return copyLabels(g.labels) }

// Histogram counts observations into cumulative buckets, Prometheus
// style: each bucket holds the number of observations at or below its
// upper bound.
type Histogram struct {
	name    string
	help    string
	labels  map[string]string
	buckets []float64

	mu     sync.Mutex
	counts []int64
	sum    float64
	count  int64
}

var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// NewHistogram creates a histogram. A nil or empty bucket list falls
// back to millisecond latency buckets.
func NewHistogram(name, help string, buckets []float64) *Histogram {
	return newHistogram(name, help, buckets, nil)
}

func newHistogram(name, help string, buckets []float64, labels map[string]string) *Histogram {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	sorted := make([]float64, len(buckets))
	copy(sorted, buckets)
	sort.Float64s(sorted)

	if labels == nil {
		labels = map[string]string{}
	}
	return &Histogram{
		name:    name,
		help:    help,
		labels:  labels,
		buckets: sorted,
		// One extra slot for +Inf.
		counts: make([]int64, len(sorted)+1),
	}
}

// Observe records one observation.
func (h *Histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += value
	h.count++
	for i := sort.SearchFloat64s(h.buckets, value); i < len(h.counts); i++ {
		h.counts[i]++
	}
}

// Count returns the total number of observations.
func (h *Histogram) Count() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Sum returns the sum of all observed values.
func (h *Histogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

// Buckets returns the bucket upper bounds, ascending.
func (h *Histogram) Buckets() []float64 {
	result := make([]float64, len(h.buckets))
	copy(result, h.buckets)
	return result
}

// BucketCounts returns the cumulative count per bucket, with the +Inf
// bucket last.
func (h *Histogram) BucketCounts() []int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]int64, len(h.counts))
	copy(result, h.counts)
	return result
}

// Name returns the metric name.
func (h *Histogram) Name() string { return h.name }

// Help returns the metric help text.
func (h *Histogram) Help() string { return h.help }

// Labels returns a copy of the metric labels.
func (h *Histogram) Labels() map[string]string { return copyLabels(h.labels) }

// CounterVec is a family of counters keyed by label values.
type CounterVec struct {
	name       string
	help       string
	labelNames []string

	mu       sync.Mutex
	counters map[string]*Counter
}

// NewCounterVec creates a counter family with the given label names.
func NewCounterVec(name, help string, labelNames []string) *CounterVec {
	return &CounterVec{
		name:       name,
		help:       help,
		labelNames: labelNames,
		counters:   make(map[string]*Counter),
	}
}

// WithLabels returns the counter for the given label values, creating
// it on first use. The value count must match the label names.
func (cv *CounterVec) WithLabels(labelValues ...string) *Counter {
	labels := zipLabels(cv.labelNames, labelValues)
	key := labelKey(labels)

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if c, ok := cv.counters[key]; ok {
		return c
	}
	c := NewCounter(cv.name, cv.help, labels)
	cv.counters[key] = c
	return c
}

// GetAll returns every counter in the family, ordered by label key so
// the exposition is stable.
func (cv *CounterVec) GetAll() []*Counter {
	cv.mu.Lock()
	defer cv.mu.Unlock()

	result := make([]*Counter, 0, len(cv.counters))
	for _, c := range cv.counters {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return labelKey(result[i].labels) < labelKey(result[j].labels)
	})
	return result
}

// Name returns the metric name.
func (cv *CounterVec) Name() string { return cv.name }

// Help returns the metric help text.
func (cv *CounterVec) Help() string { return cv.help }

// HistogramVec is a family of histograms keyed by label values.
type HistogramVec struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64

	mu         sync.Mutex
	histograms map[string]*Histogram
}

// NewHistogramVec creates a histogram family with shared buckets.
func NewHistogramVec(name, help string, labelNames []string, buckets []float64) *HistogramVec {
	return &HistogramVec{
		name:       name,
		help:       help,
		labelNames: labelNames,
		buckets:    buckets,
		histograms: make(map[string]*Histogram),
	}
}

// WithLabels returns the histogram for the given label values,
// creating it on first use.
func (hv *HistogramVec) WithLabels(labelValues ...string) *Histogram {
	labels := zipLabels(hv.labelNames, labelValues)
	key := labelKey(labels)

	hv.mu.Lock()
	defer hv.mu.Unlock()
	if h, ok := hv.histograms[key]; ok {
		return h
	}
	h := newHistogram(hv.name, hv.help, hv.buckets, labels)
	hv.histograms[key] = h
	return h
}

// GetAll returns every histogram in the family, ordered by label key.
func (hv *HistogramVec) GetAll() []*Histogram {
	hv.mu.Lock()
	defer hv.mu.Unlock()

	result := make([]*Histogram, 0, len(hv.histograms))
	for _, h := range hv.histograms {
		result = append(result, h)
	}
	sort.Slice(result, func(i, j int) bool {
		return labelKey(result[i].labels) < labelKey(result[j].labels)
	})
	return result
}

// Name returns the metric name.
func (hv *HistogramVec) Name() string { return hv.name }

// Help returns the metric help text.
func (hv *HistogramVec) Help() string { return hv.help }

func zipLabels(names, values []string) map[string]string {
	if len(values) != len(names) {
		panic(fmt.Sprintf("metric expects %d label values, got %d", len(names), len(values)))
	}
	labels := make(map[string]string, len(names))
	for i, name := range names {
		labels[name] = values[i]
	}
	return labels
}

// labelKey builds a stable map key from sorted labels.
func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(labels[k])
	}
	return sb.String()
}

func copyLabels(labels map[string]string) map[string]string {
	result := make(map[string]string, len(labels))
	for k, v := range labels {
		result[k] = v
	}
	return result
}
