package qdrantindex

import (
	"context"
	"testing"

	apperrors "github.com/peoplebench/people-bench/internal/pkg/errors"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		embedder Embedder
	}{
		{"missing collection", Config{}, fakeEmbedder{}},
		{"missing embedder", Config{Collection: "people_profiles"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.embedder)
			if !apperrors.IsConfig(err) {
				t.Errorf("New() = %v, want config error", err)
			}
		})
	}
}

func TestName(t *testing.T) {
	s, err := New(Config{Collection: "people_profiles"}, fakeEmbedder{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()

	if s.Name() != "index" {
		t.Errorf("Name() = %q, want index", s.Name())
	}
}
