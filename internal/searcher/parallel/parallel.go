// Package parallel implements the Parallel search backend.
package parallel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/peoplebench/people-bench/internal/pkg/errors"
	"github.com/peoplebench/people-bench/internal/searcher"
)

const backendName = "parallel"

// betaHeader selects the search-extract API revision.
const betaHeader = "search-extract-2025-10-10"

// Config configures the Parallel backend.
type Config struct {
	APIKey         string
	BaseURL        string
	Processor      string
	IncludeDomains []string
	RateLimit      float64
	Timeout        time.Duration
}

// Searcher calls the Parallel search API.
type Searcher struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a Parallel backend. The API key is required.
func New(cfg Config) (*Searcher, error) {
	if cfg.APIKey == "" {
		return nil, errors.ConfigError("parallel: API key required (set PARALLEL_API_KEY)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.parallel.ai/v1beta/search"
	}
	if cfg.Processor == "" {
		cfg.Processor = "base"
	}

	return &Searcher{
		cfg:     cfg,
		http:    searcher.NewHTTPClient(cfg.Timeout),
		limiter: searcher.NewLimiter(cfg.RateLimit),
	}, nil
}

// Name implements searcher.Searcher.
func (s *Searcher) Name() string { return backendName }

type sourcePolicy struct {
	IncludeDomains []string `json:"include_domains,omitempty"`
}

type searchRequest struct {
	MaxResults   int           `json:"max_results"`
	Processor    string        `json:"processor"`
	Objective    string        `json:"objective"`
	SourcePolicy *sourcePolicy `json:"source_policy,omitempty"`
}

type searchResponse struct {
	Results []struct {
		URL           string   `json:"url"`
		Title         string   `json:"title"`
		Excerpts      []string `json:"excerpts"`
		Author        string   `json:"author"`
		PublishedDate string   `json:"published_date"`
	} `json:"results"`
}

// Search implements searcher.Searcher.
func (s *Searcher) Search(ctx context.Context, query string, numResults int) ([]searcher.Candidate, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	payload := searchRequest{
		MaxResults: numResults,
		Processor:  s.cfg.Processor,
		Objective:  query,
	}
	if len(s.cfg.IncludeDomains) > 0 {
		payload.SourcePolicy = &sourcePolicy{IncludeDomains: s.cfg.IncludeDomains}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.InternalError("parallel: encoding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.InternalError("parallel: building request", err)
	}
	req.Header.Set("x-api-key", s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("parallel-beta", betaHeader)

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

	candidates := make([]searcher.Candidate, 0, numResults)
	for i, r := range parsed.Results {
		if i >= numResults {
			break
		}

		meta := map[string]any{"rank": i}
		if r.Author != "" {
			meta["author"] = r.Author
		}
		if r.PublishedDate != "" {
			meta["published_date"] = r.PublishedDate
		}

		candidates = append(candidates, searcher.Candidate{
			URL:      r.URL,
			Title:    r.Title,
			Text:     strings.Join(r.Excerpts, " "),
			Metadata: meta,
		})
	}

	return candidates, nil
}
