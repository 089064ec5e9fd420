package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// PrometheusFormat exports all metrics in Prometheus text exposition format.
// See: https://prometheus.io/docs/instrumenting/exposition_formats/
func (m *Metrics) PrometheusFormat() string {
	var sb strings.Builder

	writeCounterVec(&sb, m.SearchRequests)
	writeCounterVec(&sb, m.SearchFailures)
	writeHistogramVec(&sb, m.SearchLatency)
	writeHistogram(&sb, m.SearchResults)

	writeCounterVec(&sb, m.CacheHits)
	writeCounterVec(&sb, m.CacheMisses)

	writeCounter(&sb, m.GradeRequests)
	writeCounter(&sb, m.GradeFailures)
	writeHistogram(&sb, m.GradeLatency)

	writeCounter(&sb, m.EnrichRequests)

	writeCounterVec(&sb, m.BusEventsPublished)
	writeGauge(&sb, m.InFlightSearches)

	return sb.String()
}

func writeCounter(sb *strings.Builder, c *Counter) {
	sb.WriteString("# HELP ")
	sb.WriteString(c.Name())
	sb.WriteString(" ")
	sb.WriteString(c.Help())
	sb.WriteString("\n# TYPE ")
	sb.WriteString(c.Name())
	sb.WriteString(" counter\n")

	sb.WriteString(c.Name())
	writeLabels(sb, c.Labels())
	fmt.Fprintf(sb, " %d\n", c.Value())
}

func writeGauge(sb *strings.Builder, g *Gauge) {
	sb.WriteString("# HELP ")
	sb.WriteString(g.Name())
	sb.WriteString(" ")
	sb.WriteString(g.Help())
	sb.WriteString("\n# TYPE ")
	sb.WriteString(g.Name())
	sb.WriteString(" gauge\n")

	sb.WriteString(g.Name())
	writeLabels(sb, g.Labels())
	fmt.Fprintf(sb, " %.0f\n", g.Value())
}

func writeHistogram(sb *strings.Builder, h *Histogram) {
	sb.WriteString("# HELP ")
	sb.WriteString(h.Name())
	sb.WriteString(" ")
	sb.WriteString(h.Help())
	sb.WriteString("\n# TYPE ")
	sb.WriteString(h.Name())
	sb.WriteString(" histogram\n")

	writeHistogramSamples(sb, h)
}

func writeHistogramSamples(sb *strings.Builder, h *Histogram) {
	buckets := h.Buckets()
	counts := h.BucketCounts()
	labels := h.Labels()

	for i, bucket := range buckets {
		sb.WriteString(h.Name())
		sb.WriteString("_bucket")
		writeLabelsWith(sb, labels, "le", fmt.Sprintf("%g", bucket))
		fmt.Fprintf(sb, " %d\n", counts[i])
	}

	sb.WriteString(h.Name())
	sb.WriteString("_bucket")
	writeLabelsWith(sb, labels, "le", "+Inf")
	fmt.Fprintf(sb, " %d\n", counts[len(counts)-1])

	sb.WriteString(h.Name())
	sb.WriteString("_sum")
	writeLabels(sb, labels)
	fmt.Fprintf(sb, " %.2f\n", h.Sum())

	sb.WriteString(h.Name())
	sb.WriteString("_count")
	writeLabels(sb, labels)
	fmt.Fprintf(sb, " %d\n", h.Count())
}

func writeCounterVec(sb *strings.Builder, cv *CounterVec) {
	counters := cv.GetAll()
	if len(counters) == 0 {
		return
	}

	sb.WriteString("# HELP ")
	sb.WriteString(cv.Name())
	sb.WriteString(" ")
	sb.WriteString(cv.Help())
	sb.WriteString("\n# TYPE ")
	sb.WriteString(cv.Name())
	sb.WriteString(" counter\n")

	for _, c := range counters {
		sb.WriteString(c.Name())
		writeLabels(sb, c.Labels())
		fmt.Fprintf(sb, " %d\n", c.Value())
	}
}

func writeHistogramVec(sb *strings.Builder, hv *HistogramVec) {
	histograms := hv.GetAll()
	if len(histograms) == 0 {
		return
	}

	sb.WriteString("# HELP ")
	sb.WriteString(hv.Name())
	sb.WriteString(" ")
	sb.WriteString(hv.Help())
	sb.WriteString("\n# TYPE ")
	sb.WriteString(hv.Name())
	sb.WriteString(" histogram\n")

	for _, h := range histograms {
		writeHistogramSamples(sb, h)
	}
}

// writeLabels writes labels in Prometheus format {key="value",key2="value2"}.
func writeLabels(sb *strings.Builder, labels map[string]string) {
	if len(labels) == 0 {
		return
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(k)
		sb.WriteString("=\"")
		sb.WriteString(escapeString(labels[k]))
		sb.WriteString("\"")
	}
	sb.WriteString("}")
}

// writeLabelsWith writes labels plus one extra label (used for le).
func writeLabelsWith(sb *strings.Builder, labels map[string]string, extraKey, extraValue string) {
	merged := make(map[string]string, len(labels)+1)
	for k, v := range labels {
		merged[k] = v
	}
	merged[extraKey] = extraValue
	writeLabels(sb, merged)
}

// escapeString escapes special characters in label values.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
