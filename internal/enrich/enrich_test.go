package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/peoplebench/people-bench/internal/pkg/logger"
	"github.com/peoplebench/people-bench/internal/searcher"
)

func TestEnrichReplacesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["livecrawl"] != "fallback" {
			t.Errorf("livecrawl = %v", req["livecrawl"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"url": "https://linkedin.com/in/a", "text": "full profile content"},
			},
		})
	}))
	defer srv.Close()

	e := New(Config{APIKey: "k", BaseURL: srv.URL}, logger.New("error", "text"))

	in := []searcher.Candidate{
		{URL: "https://linkedin.com/in/a", Text: "snippet a"},
		{URL: "https://linkedin.com/in/b", Text: "snippet b"},
	}
	got := e.Enrich(context.Background(), in)

	if got[0].Text != "full profile content" {
		t.Errorf("candidate a text = %q, want enriched content", got[0].Text)
	}
	if got[1].Text != "snippet b" {
		t.Errorf("candidate b text = %q, want original snippet", got[1].Text)
	}
}

func TestEnrichFailureKeepsSnippets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := New(Config{APIKey: "k", BaseURL: srv.URL}, logger.New("error", "text"))

	in := []searcher.Candidate{{URL: "https://linkedin.com/in/a", Text: "snippet"}}
	got := e.Enrich(context.Background(), in)

	if len(got) != 1 || got[0].Text != "snippet" {
		t.Errorf("failure should return originals, got %v", got)
	}
}

func TestNewWithoutKeyDisabled(t *testing.T) {
	if e := New(Config{}, nil); e != nil {
		t.Error("New without API key should return nil (enrichment disabled)")
	}
}
