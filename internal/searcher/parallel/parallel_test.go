package parallel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/peoplebench/people-bench/internal/pkg/errors"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("parallel-beta"); got != betaHeader {
			t.Errorf("parallel-beta = %q", got)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req["objective"] != "head of ux in berlin" {
			t.Errorf("objective = %v", req["objective"])
		}
		if req["max_results"] != float64(2) {
			t.Errorf("max_results = %v, want 2", req["max_results"])
		}
		policy, _ := req["source_policy"].(map[string]any)
		if policy == nil {
			t.Error("source_policy missing")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"url": "https://linkedin.com/in/a", "title": "Head of UX", "excerpts": []string{"leads design", "in Berlin"}},
				{"url": "https://linkedin.com/in/b", "title": "UX Lead", "excerpts": []string{"berlin based"}},
				{"url": "https://linkedin.com/in/c", "title": "beyond max_results"},
			},
		})
	}))
	defer srv.Close()

	s, err := New(Config{APIKey: "test-key", BaseURL: srv.URL, IncludeDomains: []string{"linkedin.com"}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	got, err := s.Search(context.Background(), "head of ux in berlin", 2)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("len(candidates) = %d, want 2 (truncated to num_results)", len(got))
	}
	if got[0].Text != "leads design in Berlin" {
		t.Errorf("excerpts not joined: %q", got[0].Text)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); !apperrors.IsConfig(err) {
		t.Errorf("New without key = %v, want config error", err)
	}
}
