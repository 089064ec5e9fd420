package searcher

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout is the per-request timeout for search API calls.
const DefaultTimeout = 60 * time.Second

// NewHTTPClient returns an HTTP client tuned for many concurrent calls
// against a single API host.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewLimiter builds a client-side rate limiter for a backend.
// requestsPerSecond <= 0 disables limiting.
func NewLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
