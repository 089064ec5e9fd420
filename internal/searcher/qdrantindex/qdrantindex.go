// Package qdrantindex implements a search backend over a local Qdrant
// collection of people profiles. It exists so search quality of an
// internal index can be benchmarked against the hosted APIs.
package qdrantindex

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/peoplebench/people-bench/internal/pkg/errors"
	"github.com/peoplebench/people-bench/internal/searcher"
)

const backendName = "index"

// maxRecvMsgSize allows large payloads when profiles carry full page text.
const maxRecvMsgSize = 32 * 1024 * 1024

// Embedder turns query text into a dense vector. Implemented by the
// grader package's OpenAI client; faked in tests.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config configures the Qdrant index backend.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Timeout    time.Duration
}

// Searcher queries a Qdrant profile collection.
type Searcher struct {
	client     *qdrant.Client
	embedder   Embedder
	collection string
	timeout    time.Duration
}

// New creates the Qdrant index backend.
func New(cfg Config, embedder Embedder) (*Searcher, error) {
	if cfg.Collection == "" {
		return nil, errors.ConfigError("index: collection name required")
	}
	if embedder == nil {
		return nil, errors.ConfigError("index: embedder required")
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxRecvMsgSize)),
		},
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeConfig, "index: creating qdrant client", err)
	}

	return &Searcher{
		client:     client,
		embedder:   embedder,
		collection: cfg.Collection,
		timeout:    cfg.Timeout,
	}, nil
}

// Name implements searcher.Searcher.
func (s *Searcher) Name() string { return backendName }

// Search implements searcher.Searcher.
func (s *Searcher) Search(ctx context.Context, query string, numResults int) ([]searcher.Candidate, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.SearchError(backendName, fmt.Errorf("embedding query: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQueryDense(vector),
		Limit:          qdrant.PtrOf(uint64(numResults)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, errors.SearchError(backendName, err)
	}

	candidates := make([]searcher.Candidate, 0, len(points))
	for _, p := range points {
		candidates = append(candidates, searcher.Candidate{
			URL:   getString(p.Payload, "url"),
			Title: getString(p.Payload, "title"),
			Text:  getString(p.Payload, "text"),
			Metadata: map[string]any{
				"score": p.Score,
			},
		})
	}

	return candidates, nil
}

// Close releases the gRPC connection.
func (s *Searcher) Close() error {
	return s.client.Close()
}

func getString(payload map[string]*qdrant.Value, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
