// Package enrich replaces candidate snippets with full page content
// before grading. Enrichment is best effort: any failure degrades to
// the original snippets rather than failing the pair.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/peoplebench/people-bench/internal/pkg/logger"
	"github.com/peoplebench/people-bench/internal/searcher"
)

// Config configures the content fetcher.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Enricher fetches page text from the Exa /contents endpoint.
type Enricher struct {
	cfg  Config
	http *http.Client
	log  *logger.Logger
}

// New creates an enricher. Returns nil if no API key is configured;
// callers treat a nil enricher as enrichment disabled.
func New(cfg Config, log *logger.Logger) *Enricher {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.exa.ai"
	}
	if log == nil {
		log = logger.Default()
	}

	return &Enricher{
		cfg:  cfg,
		http: searcher.NewHTTPClient(cfg.Timeout),
		log:  log,
	}
}

type contentsRequest struct {
	URLs      []string `json:"urls"`
	Text      bool     `json:"text"`
	Livecrawl string   `json:"livecrawl"`
}

type contentsResponse struct {
	Results []struct {
		URL  string `json:"url"`
		Text string `json:"text"`
	} `json:"results"`
}

// Enrich returns the candidates with text replaced by fetched page
// content where available. Rank order is preserved.
func (e *Enricher) Enrich(ctx context.Context, candidates []searcher.Candidate) []searcher.Candidate {
	urls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.URL != "" {
			urls = append(urls, c.URL)
		}
	}
	if len(urls) == 0 {
		return candidates
	}

	contents, err := e.fetchContents(ctx, urls)
	if err != nil {
		e.log.WithError(err).Warn("content fetch failed, grading on snippets")
		return candidates
	}

	enriched := make([]searcher.Candidate, len(candidates))
	for i, c := range candidates {
		if text, ok := contents[c.URL]; ok {
			c.Text = text
		}
		enriched[i] = c
	}
	return enriched
}

func (e *Enricher) fetchContents(ctx context.Context, urls []string) (map[string]string, error) {
	body, err := json.Marshal(contentsRequest{
		URLs:      urls,
		Text:      true,
		Livecrawl: "fallback",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/contents", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", e.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("contents API status %d", resp.StatusCode)
	}

	var parsed contentsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}

	contents := make(map[string]string, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL != "" && r.Text != "" {
			contents[r.URL] = r.Text
		}
	}
	return contents, nil
}
