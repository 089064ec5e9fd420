// Package brave implements the Brave Search web backend.
package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/peoplebench/people-bench/internal/pkg/errors"
	"github.com/peoplebench/people-bench/internal/searcher"
)

const backendName = "brave"

// Brave API limits on the q parameter.
const (
	maxQueryChars = 400
	maxQueryWords = 50
)

// Config configures the Brave backend.
type Config struct {
	APIKey     string
	BaseURL    string
	SiteFilter string
	RateLimit  float64
	Timeout    time.Duration
}

// Searcher calls the Brave web search API.
type Searcher struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a Brave backend. The API key is required.
func New(cfg Config) (*Searcher, error) {
	if cfg.APIKey == "" {
		return nil, errors.ConfigError("brave: API key required (set BRAVE_SEARCH_API_KEY)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.search.brave.com/res/v1/web/search"
	}

	return &Searcher{
		cfg:     cfg,
		http:    searcher.NewHTTPClient(cfg.Timeout),
		limiter: searcher.NewLimiter(cfg.RateLimit),
	}, nil
}

// Name implements searcher.Searcher.
func (s *Searcher) Name() string { return backendName }

type searchResponse struct {
	Web struct {
		Results []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			Description string `json:"description"`
			PageAge     string `json:"page_age"`
			Age         string `json:"age"`
		} `json:"results"`
	} `json:"web"`
}

// Search implements searcher.Searcher.
func (s *Searcher) Search(ctx context.Context, query string, numResults int) ([]searcher.Candidate, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	q := query
	if s.cfg.SiteFilter != "" {
		q = fmt.Sprintf("site:%s %s", s.cfg.SiteFilter, q)
	}
	q = clampQuery(q)

	params := url.Values{}
	params.Set("q", q)
	params.Set("count", strconv.Itoa(numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.InternalError("brave: building request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("X-Subscription-Token", s.cfg.APIKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, errors.SearchError(backendName, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.SearchError(backendName, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, searcher.APIError(backendName, resp.StatusCode, string(respBody))
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errors.SearchError(backendName, fmt.Errorf("decoding response: %w", err))
	}

	candidates := make([]searcher.Candidate, 0, len(parsed.Web.Results))
	for i, hit := range parsed.Web.Results {
		if hit.URL == "" {
			continue
		}

		pubDate := hit.PageAge
		if pubDate == "" {
			pubDate = hit.Age
		}

		meta := map[string]any{"rank": i}
		if pubDate != "" {
			meta["published_date"] = pubDate
		}

		candidates = append(candidates, searcher.Candidate{
			URL:      hit.URL,
			Title:    hit.Title,
			Text:     hit.Description,
			Metadata: meta,
		})
	}

	return candidates, nil
}

// clampQuery enforces the Brave API limits of 400 characters and 50
// words per query.
func clampQuery(q string) string {
	if len(q) > maxQueryChars {
		return q[:maxQueryChars]
	}
	if words := strings.Fields(q); len(words) > maxQueryWords {
		return strings.Join(words[:maxQueryWords], " ")
	}
	return q
}
