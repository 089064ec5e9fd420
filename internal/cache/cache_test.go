package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/peoplebench/people-bench/internal/config"
	"github.com/peoplebench/people-bench/internal/searcher"
)

func candidates(urls ...string) []searcher.Candidate {
	out := make([]searcher.Candidate, len(urls))
	for i, u := range urls {
		out[i] = searcher.Candidate{URL: u, Title: "t", Text: "x"}
	}
	return out
}

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "exa", "q", 10); ok {
		t.Fatal("empty cache should miss")
	}

	want := candidates("https://a.test", "https://b.test")
	c.Set(ctx, "exa", "q", 10, want)

	got, ok := c.Get(ctx, "exa", "q", 10)
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got) != 2 || got[0].URL != "https://a.test" {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryCacheKeyComponents(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()

	c.Set(ctx, "exa", "q", 10, candidates("https://a.test"))

	if _, ok := c.Get(ctx, "brave", "q", 10); ok {
		t.Error("different searcher must miss")
	}
	if _, ok := c.Get(ctx, "exa", "other", 10); ok {
		t.Error("different query must miss")
	}
	if _, ok := c.Get(ctx, "exa", "q", 5); ok {
		t.Error("different result count must miss")
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	c := NewMemoryCache(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c.Set(ctx, "exa", fmt.Sprintf("q%d", i), 10, candidates("https://a.test"))
	}
	// Touch q0 so q1 becomes the eviction candidate.
	c.Get(ctx, "exa", "q0", 10)

	c.Set(ctx, "exa", "q3", 10, candidates("https://a.test"))

	if _, ok := c.Get(ctx, "exa", "q1", 10); ok {
		t.Error("least recently used entry should have been evicted")
	}
	if _, ok := c.Get(ctx, "exa", "q0", 10); !ok {
		t.Error("recently used entry should survive eviction")
	}
	if c.Size() != 3 {
		t.Errorf("Size() = %d, want 3", c.Size())
	}
}

func TestMemoryCacheCopies(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()

	orig := candidates("https://a.test")
	c.Set(ctx, "exa", "q", 10, orig)
	orig[0].URL = "https://mutated.test"

	got, _ := c.Get(ctx, "exa", "q", 10)
	if got[0].URL != "https://a.test" {
		t.Error("cache must not share slices with callers")
	}

	got[0].URL = "https://mutated-again.test"
	got2, _ := c.Get(ctx, "exa", "q", 10)
	if got2[0].URL != "https://a.test" {
		t.Error("returned slices must not alias the cached copy")
	}
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, config.CacheConfig{Type: "none"})
	if err != nil || c != nil {
		t.Errorf("none: cache = %v, err = %v, want nil, nil", c, err)
	}

	c, err = New(ctx, config.CacheConfig{Type: "memory", Size: 5})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("memory: got %T", c)
	}

	if _, err := New(ctx, config.CacheConfig{Type: "bogus"}); err == nil {
		t.Error("bogus type should be rejected")
	}
}
