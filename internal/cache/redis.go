package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peoplebench/people-bench/internal/searcher"
)

// RedisCache persists search results across processes, so an
// interrupted benchmark can be resumed without re-querying backends.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisCache{
		client: client,
		prefix: "pb:search:",
		ttl:    ttl,
	}, nil
}

// Get retrieves cached candidates. Backend errors degrade to a miss.
func (c *RedisCache) Get(ctx context.Context, searcherName, query string, numResults int) ([]searcher.Candidate, bool) {
	data, err := c.client.Get(ctx, c.prefix+key(searcherName, query, numResults)).Bytes()
	if err != nil {
		return nil, false
	}

	var candidates []searcher.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, false
	}
	return candidates, true
}

// Set stores candidates with the configured TTL. Write failures are
// silent: the cache is an optimization, not a store of record.
func (c *RedisCache) Set(ctx context.Context, searcherName, query string, numResults int, candidates []searcher.Candidate) {
	data, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.prefix+key(searcherName, query, numResults), data, c.ttl)
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
