// Package cache provides search result caching so repeated benchmark
// runs against the same dataset do not re-spend backend API quota.
package cache

import (
	"context"
	"strconv"

	"github.com/peoplebench/people-bench/internal/config"
	"github.com/peoplebench/people-bench/internal/pkg/errors"
	"github.com/peoplebench/people-bench/internal/pkg/hash"
	"github.com/peoplebench/people-bench/internal/searcher"
)

// Cache stores candidate lists keyed by (searcher, query, numResults).
type Cache interface {
	// Get returns the cached candidates, or false on a miss.
	Get(ctx context.Context, searcherName, query string, numResults int) ([]searcher.Candidate, bool)

	// Set stores candidates for a search call.
	Set(ctx context.Context, searcherName, query string, numResults int, candidates []searcher.Candidate)

	// Close releases backend resources.
	Close() error
}

// key derives the cache key. numResults is part of the key because a
// backend may return different candidate sets for different limits.
func key(searcherName, query string, numResults int) string {
	return hash.Key(searcherName, query, strconv.Itoa(numResults))
}

// New creates a cache from configuration. Type "none" returns nil;
// callers treat a nil cache as always-miss.
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryCache(cfg.Size), nil
	case "redis":
		return NewRedisCache(ctx, cfg.RedisURL, cfg.TTL)
	default:
		return nil, errors.ConfigError("unknown cache type: " + cfg.Type)
	}
}
