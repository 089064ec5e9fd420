// Package dataset loads the fixed people-search query benchmark.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/peoplebench/people-bench/internal/pkg/errors"
	"github.com/peoplebench/people-bench/internal/pkg/logger"
)

// Metadata holds the structured expectations a query is graded against.
type Metadata struct {
	RoleTitle     string `json:"role_title,omitempty" yaml:"role_title"`
	RoleFunction  string `json:"role_function,omitempty" yaml:"role_function"`
	RoleSeniority string `json:"role_seniority,omitempty" yaml:"role_seniority"`
	GeoName       string `json:"geo_name,omitempty" yaml:"geo_name"`
	GeoType       string `json:"geo_type,omitempty" yaml:"geo_type"`
}

// Query is one benchmark query. Queries are loaded once and read-only
// for the duration of a run.
type Query struct {
	ID       string   `json:"query_id"`
	Text     string   `json:"text"`
	Bucket   string   `json:"bucket,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// Validate checks that a record carries the fields grading depends on.
func (q Query) Validate() error {
	if q.ID == "" {
		return errors.DatasetError("query record missing query_id", nil)
	}
	if q.Text == "" {
		return errors.DatasetError(fmt.Sprintf("query %s has empty text", q.ID), nil)
	}
	return nil
}

// Load reads queries from a JSONL file in dataset order. Malformed
// records are skipped with a warning; limit > 0 truncates to the first
// limit valid records.
func Load(path string, limit int, log *logger.Logger) ([]Query, error) {
	if log == nil {
		log = logger.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeConfig, fmt.Sprintf("opening dataset %s", path), err)
	}
	defer f.Close()

	var queries []Query
	scanner := bufio.NewScanner(f)
	// Some records carry full profile snippets; allow long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var q Query
		if err := json.Unmarshal(raw, &q); err != nil {
			log.Warn("skipping malformed query record", "line", line, "error", err)
			continue
		}
		if err := q.Validate(); err != nil {
			log.WithError(err).Warn("skipping invalid query record", "line", line)
			continue
		}

		queries = append(queries, q)
		if limit > 0 && len(queries) == limit {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeDataset, "reading dataset", err)
	}

	return queries, nil
}
