// Package exa implements the Exa search backend.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/peoplebench/people-bench/internal/pkg/errors"
	"github.com/peoplebench/people-bench/internal/searcher"
)

const backendName = "exa"

// Config configures the Exa backend.
type Config struct {
	APIKey     string
	BaseURL    string
	Category   string
	SearchType string
	RateLimit  float64
	Timeout    time.Duration
}

// Searcher calls the Exa /search API.
type Searcher struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// New creates an Exa backend. The API key is required.
func New(cfg Config) (*Searcher, error) {
	if cfg.APIKey == "" {
		return nil, errors.ConfigError("exa: API key required (set EXA_API_KEY)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.exa.ai"
	}
	if cfg.SearchType == "" {
		cfg.SearchType = "fast"
	}

	return &Searcher{
		cfg:     cfg,
		http:    searcher.NewHTTPClient(cfg.Timeout),
		limiter: searcher.NewLimiter(cfg.RateLimit),
	}, nil
}

// Name implements searcher.Searcher.
func (s *Searcher) Name() string { return backendName }

type searchRequest struct {
	Query      string    `json:"query"`
	NumResults int       `json:"numResults"`
	Type       string    `json:"type"`
	Category   string    `json:"category,omitempty"`
	Contents   *contents `json:"contents,omitempty"`
}

type contents struct {
	Text bool `json:"text"`
}

type searchResponse struct {
	Results []struct {
		URL           string   `json:"url"`
		Title         string   `json:"title"`
		Text          string   `json:"text"`
		Score         *float64 `json:"score"`
		PublishedDate string   `json:"publishedDate"`
		Author        string   `json:"author"`
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
		Query:      query,
		NumResults: numResults,
		Type:       s.cfg.SearchType,
		Category:   s.cfg.Category,
		Contents:   &contents{Text: true},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.InternalError("exa: encoding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.InternalError("exa: building request", err)
	}
	req.Header.Set("x-api-key", s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

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

	candidates := make([]searcher.Candidate, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		meta := map[string]any{}
		if r.Score != nil {
			meta["score"] = *r.Score
		}
		if r.PublishedDate != "" {
			meta["published_date"] = r.PublishedDate
		}
		if r.Author != "" {
			meta["author"] = r.Author
		}
		candidates = append(candidates, searcher.Candidate{
			URL:      r.URL,
			Title:    r.Title,
			Text:     r.Text,
			Metadata: meta,
		})
	}

	return candidates, nil
}
