package exa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/peoplebench/people-bench/internal/pkg/errors"
	"github.com/peoplebench/people-bench/internal/searcher"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s, want /search", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req["query"] != "ml engineer in sf" {
			t.Errorf("query = %v", req["query"])
		}
		if req["numResults"] != float64(10) {
			t.Errorf("numResults = %v, want 10", req["numResults"])
		}
		if req["category"] != "people" {
			t.Errorf("category = %v, want people", req["category"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"url": "https://linkedin.com/in/a", "title": "ML Engineer", "text": "profile text", "score": 0.91},
				{"url": "https://linkedin.com/in/b", "title": "Data Scientist", "text": ""},
			},
		})
	}))
	defer srv.Close()

	s, err := New(Config{APIKey: "test-key", BaseURL: srv.URL, Category: "people"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	got, err := s.Search(context.Background(), "ml engineer in sf", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(got))
	}
	if got[0].URL != "https://linkedin.com/in/a" {
		t.Errorf("candidate order not preserved: %v", got)
	}
	if got[0].Metadata["score"] != 0.91 {
		t.Errorf("score metadata = %v", got[0].Metadata["score"])
	}
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s, err := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Search(context.Background(), "cfo in austin", 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.Is(err, apperrors.CodeRateLimited) {
		t.Errorf("code = %s, want %s", apperrors.Code(err), apperrors.CodeRateLimited)
	}
	if !searcher.Transient(err) {
		t.Error("429 should be classified transient")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); !apperrors.IsConfig(err) {
		t.Errorf("New without key = %v, want config error", err)
	}
}
