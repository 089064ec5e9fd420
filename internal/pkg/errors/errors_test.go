package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		contains []string
	}{
		{
			name:     "without wrapped error",
			err:      ConfigError("unknown searcher: bing"),
			contains: []string{CodeConfig, "unknown searcher: bing"},
		},
		{
			name:     "with wrapped error",
			err:      SearchError("exa", stderrors.New("status 429")),
			contains: []string{CodeSearchFailed, "search failed", "status 429"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, missing %q", msg, want)
				}
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := JudgeError("judge call failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestCodePredicates(t *testing.T) {
	cfgErr := ConfigError("bad limit")
	dataErr := DatasetError("bad record", stderrors.New("unexpected EOF"))

	if !IsConfig(cfgErr) || IsConfig(dataErr) {
		t.Error("IsConfig misclassified")
	}
	if !IsDataset(dataErr) || IsDataset(cfgErr) {
		t.Error("IsDataset misclassified")
	}

	// Predicates see through further wrapping.
	wrapped := fmt.Errorf("loading dataset: %w", dataErr)
	if !IsDataset(wrapped) {
		t.Error("IsDataset failed on wrapped error")
	}

	if Code(stderrors.New("plain")) != CodeInternal {
		t.Error("foreign errors should map to CodeInternal")
	}
}

func TestWithDetail(t *testing.T) {
	err := SearchError("brave", stderrors.New("timeout")).WithDetail("query_id", "q7")

	if err.Details["searcher"] != "brave" {
		t.Errorf("searcher detail = %q", err.Details["searcher"])
	}
	if err.Details["query_id"] != "q7" {
		t.Errorf("query_id detail = %q", err.Details["query_id"])
	}
}
