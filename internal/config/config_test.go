package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Run.NumResults != 10 {
		t.Errorf("NumResults = %d, want 10", cfg.Run.NumResults)
	}
	if cfg.Run.Limit != 0 {
		t.Errorf("Limit = %d, want 0 (all queries)", cfg.Run.Limit)
	}
	if cfg.Run.Concurrency != 20 {
		t.Errorf("Concurrency = %d, want 20", cfg.Run.Concurrency)
	}
	if cfg.Run.UngradedPolicy != UngradedExclude {
		t.Errorf("UngradedPolicy = %q, want %q", cfg.Run.UngradedPolicy, UngradedExclude)
	}
	if len(cfg.Run.Searchers) != 3 {
		t.Errorf("Searchers = %v, want 3 defaults", cfg.Run.Searchers)
	}
	if cfg.Judge.Model != "gpt-4.1" {
		t.Errorf("Judge.Model = %q, want gpt-4.1", cfg.Judge.Model)
	}
	if cfg.Searchers.Brave.SiteFilter != "linkedin.com/in" {
		t.Errorf("Brave.SiteFilter = %q", cfg.Searchers.Brave.SiteFilter)
	}
}

func TestYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
run:
  limit: 50
  num_results: 5
  searchers: [exa]
judge:
  model: gpt-4o-mini
cache:
  type: redis
  redis_url: redis://cache:6379
  ttl: 1h
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Run.Limit != 50 {
		t.Errorf("Limit = %d, want 50", cfg.Run.Limit)
	}
	if cfg.Run.NumResults != 5 {
		t.Errorf("NumResults = %d, want 5", cfg.Run.NumResults)
	}
	if len(cfg.Run.Searchers) != 1 || cfg.Run.Searchers[0] != "exa" {
		t.Errorf("Searchers = %v, want [exa]", cfg.Run.Searchers)
	}
	if cfg.Judge.Model != "gpt-4o-mini" {
		t.Errorf("Judge.Model = %q", cfg.Judge.Model)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	// Untouched fields keep defaults.
	if cfg.Run.GradeConcurrency != 50 {
		t.Errorf("GradeConcurrency = %d, want default 50", cfg.Run.GradeConcurrency)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("run:\n  limit: 50\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PB_LIMIT", "7")
	t.Setenv("PB_SEARCHERS", "brave,parallel")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Run.Limit != 7 {
		t.Errorf("Limit = %d, want env override 7", cfg.Run.Limit)
	}
	if len(cfg.Run.Searchers) != 2 {
		t.Errorf("Searchers = %v, want [brave parallel]", cfg.Run.Searchers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "zero num_results",
			mutate:  func(c *Config) { c.Run.NumResults = 0 },
			wantErr: "num_results",
		},
		{
			name:    "negative limit",
			mutate:  func(c *Config) { c.Run.Limit = -1 },
			wantErr: "limit",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Run.Concurrency = 0 },
			wantErr: "concurrency",
		},
		{
			name:    "no searchers",
			mutate:  func(c *Config) { c.Run.Searchers = nil },
			wantErr: "at least one searcher",
		},
		{
			name:    "bad ungraded policy",
			mutate:  func(c *Config) { c.Run.UngradedPolicy = "half" },
			wantErr: "ungraded_policy",
		},
		{
			name:    "bad cache type",
			mutate:  func(c *Config) { c.Cache.Type = "disk" },
			wantErr: "cache type",
		},
		{
			name:    "kafka without brokers",
			mutate:  func(c *Config) { c.Bus.Type = "kafka"; c.Bus.KafkaBrokers = "" },
			wantErr: "kafka_brokers",
		},
		{
			name:    "empty judge model",
			mutate:  func(c *Config) { c.Judge.Model = "" },
			wantErr: "judge model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
