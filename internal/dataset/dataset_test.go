package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/peoplebench/people-bench/internal/pkg/logger"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleDataset = `{"query_id":"q1","text":"senior payroll specialist in boston","bucket":"finance","metadata":{"role_function":"finance","role_seniority":"ic","geo_name":"Boston","geo_type":"city"}}
{"query_id":"q2","text":"head of ux in berlin","bucket":"design","metadata":{"role_function":"design","role_seniority":"leadership","geo_name":"Berlin","geo_type":"city"}}
{"query_id":"q3","text":"ml engineer in sf","bucket":"engineering","metadata":{"role_function":"engineering","role_seniority":"ic","geo_name":"San Francisco","geo_type":"city"}}
`

func TestLoad(t *testing.T) {
	path := writeDataset(t, sampleDataset)

	queries, err := Load(path, 0, logger.New("error", "text"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(queries) != 3 {
		t.Fatalf("len(queries) = %d, want 3", len(queries))
	}
	if queries[0].ID != "q1" || queries[1].ID != "q2" || queries[2].ID != "q3" {
		t.Errorf("queries out of dataset order: %v", queries)
	}
	if queries[0].Metadata.GeoName != "Boston" {
		t.Errorf("q1 geo = %q, want Boston", queries[0].Metadata.GeoName)
	}
	if queries[1].Bucket != "design" {
		t.Errorf("q2 bucket = %q, want design", queries[1].Bucket)
	}
}

func TestLoadLimitIsDeterministic(t *testing.T) {
	path := writeDataset(t, sampleDataset)

	for i := 0; i < 5; i++ {
		queries, err := Load(path, 2, logger.New("error", "text"))
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if len(queries) != 2 {
			t.Fatalf("len(queries) = %d, want 2", len(queries))
		}
		if queries[0].ID != "q1" || queries[1].ID != "q2" {
			t.Fatalf("limit must keep the first N in dataset order, got %v", queries)
		}
	}
}

func TestLoadSkipsMalformedRecords(t *testing.T) {
	content := `{"query_id":"q1","text":"data engineer in nyc"}
not json at all
{"query_id":"","text":"missing id"}
{"query_id":"q2"}
{"query_id":"q3","text":"product manager in london"}
`
	path := writeDataset(t, content)

	queries, err := Load(path, 0, logger.New("error", "text"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(queries) != 2 {
		t.Fatalf("len(queries) = %d, want 2 (malformed records skipped)", len(queries))
	}
	if queries[0].ID != "q1" || queries[1].ID != "q3" {
		t.Errorf("unexpected surviving records: %v", queries)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/queries.jsonl", 0, logger.New("error", "text")); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		wantErr bool
	}{
		{"complete", Query{ID: "q1", Text: "cfo in austin"}, false},
		{"missing id", Query{Text: "cfo in austin"}, true},
		{"missing text", Query{ID: "q1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.q.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
