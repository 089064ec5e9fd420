// Package searcher defines the search backend capability and the
// registry benchmark runs resolve backends from.
package searcher

import (
	"context"
	"errors"
	"net"
	"strconv"

	apperrors "github.com/peoplebench/people-bench/internal/pkg/errors"
)

// Candidate is one result returned by a backend for a query. It exists
// only between search and grading; nothing persists it.
type Candidate struct {
	URL      string         `json:"url"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Searcher is the backend capability: return up to numResults ranked
// candidates for a query. Implementations must honor ctx cancellation
// and must not reorder results between calls for the same input.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, numResults int) ([]Candidate, error)
}

// APIError wraps a non-2xx response from a search backend so callers
// can decide whether the failure is worth retrying.
func APIError(backend string, status int, body string) error {
	code := apperrors.CodeSearchFailed
	switch {
	case status == 429:
		code = apperrors.CodeRateLimited
	case status == 408 || status == 504:
		code = apperrors.CodeTimeout
	}
	return apperrors.New(code, "unexpected API response").
		WithDetail("searcher", backend).
		WithDetail("status", strconv.Itoa(status)).
		WithDetail("body", truncate(body, 200))
}

// Transient reports whether a search or judge failure is plausibly
// recoverable on retry: rate limits, timeouts, and 5xx responses.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if apperrors.Is(err, apperrors.CodeRateLimited) || apperrors.Is(err, apperrors.CodeTimeout) {
		return true
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if status, found := appErr.Details["status"]; found {
			if n, convErr := strconv.Atoi(status); convErr == nil && n >= 500 {
				return true
			}
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
