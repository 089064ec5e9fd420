// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Ungraded pair policies.
const (
	UngradedExclude = "exclude" // drop ungraded pairs from metric denominators
	UngradedZero    = "zero"    // count ungraded pairs as misses
)

// Config holds all application configuration.
type Config struct {
	// Dataset configuration
	Dataset DatasetConfig `yaml:"dataset"`

	// Run configuration
	Run RunConfig `yaml:"run"`

	// Searcher backend configuration
	Searchers SearchersConfig `yaml:"searchers"`

	// Judge configuration
	Judge JudgeConfig `yaml:"judge"`

	// Retry configuration for external calls
	Retry RetryConfig `yaml:"retry"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Bus configuration
	Bus BusConfig `yaml:"bus"`

	// Report configuration
	Report ReportConfig `yaml:"report"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// DatasetConfig holds query dataset settings.
type DatasetConfig struct {
	Path string `envconfig:"PB_DATASET_PATH" yaml:"path"`
}

// RunConfig holds benchmark run settings.
type RunConfig struct {
	// Limit caps the query count; 0 means all queries.
	Limit int `envconfig:"PB_LIMIT" yaml:"limit"`

	// NumResults is the number of results requested per query.
	NumResults int `envconfig:"PB_NUM_RESULTS" yaml:"num_results"`

	// Searchers are the backend names to run.
	Searchers []string `envconfig:"PB_SEARCHERS" yaml:"searchers"`

	// EnrichContents fetches full page content before grading.
	EnrichContents bool `envconfig:"PB_ENRICH_CONTENTS" yaml:"enrich_contents"`

	// Concurrency bounds in-flight search calls per searcher.
	Concurrency int `envconfig:"PB_CONCURRENCY" yaml:"concurrency"`

	// GradeConcurrency bounds in-flight judge calls across the run.
	GradeConcurrency int `envconfig:"PB_GRADE_CONCURRENCY" yaml:"grade_concurrency"`

	// UngradedPolicy controls how judge-failure pairs affect metrics.
	UngradedPolicy string `envconfig:"PB_UNGRADED_POLICY" yaml:"ungraded_policy"`
}

// SearchersConfig holds per-backend settings.
type SearchersConfig struct {
	Exa      ExaConfig      `yaml:"exa"`
	Brave    BraveConfig    `yaml:"brave"`
	Parallel ParallelConfig `yaml:"parallel"`
	Index    IndexConfig    `yaml:"index"`
}

// ExaConfig holds Exa API settings.
type ExaConfig struct {
	APIKey     string  `envconfig:"EXA_API_KEY" yaml:"api_key"`
	BaseURL    string  `envconfig:"PB_EXA_BASE_URL" yaml:"base_url"`
	Category   string  `envconfig:"PB_EXA_CATEGORY" yaml:"category"`
	SearchType string  `envconfig:"PB_EXA_SEARCH_TYPE" yaml:"search_type"`
	RateLimit  float64 `envconfig:"PB_EXA_RATE_LIMIT" yaml:"rate_limit"`
}

// BraveConfig holds Brave Search API settings.
type BraveConfig struct {
	APIKey     string  `envconfig:"BRAVE_SEARCH_API_KEY" yaml:"api_key"`
	BaseURL    string  `envconfig:"PB_BRAVE_BASE_URL" yaml:"base_url"`
	SiteFilter string  `envconfig:"PB_BRAVE_SITE_FILTER" yaml:"site_filter"`
	RateLimit  float64 `envconfig:"PB_BRAVE_RATE_LIMIT" yaml:"rate_limit"`
}

// ParallelConfig holds Parallel API settings.
type ParallelConfig struct {
	APIKey         string   `envconfig:"PARALLEL_API_KEY" yaml:"api_key"`
	BaseURL        string   `envconfig:"PB_PARALLEL_BASE_URL" yaml:"base_url"`
	Processor      string   `envconfig:"PB_PARALLEL_PROCESSOR" yaml:"processor"`
	IncludeDomains []string `envconfig:"PB_PARALLEL_INCLUDE_DOMAINS" yaml:"include_domains"`
	RateLimit      float64  `envconfig:"PB_PARALLEL_RATE_LIMIT" yaml:"rate_limit"`
}

// IndexConfig holds settings for the local Qdrant profile index backend.
type IndexConfig struct {
	Host       string `envconfig:"PB_QDRANT_HOST" yaml:"host"`
	Port       int    `envconfig:"PB_QDRANT_PORT" yaml:"port"`
	APIKey     string `envconfig:"PB_QDRANT_API_KEY" yaml:"api_key"`
	UseTLS     bool   `envconfig:"PB_QDRANT_TLS" yaml:"use_tls"`
	Collection string `envconfig:"PB_QDRANT_COLLECTION" yaml:"collection"`
	EmbedModel string `envconfig:"PB_EMBED_MODEL" yaml:"embed_model"`
}

// JudgeConfig holds LLM judge settings.
type JudgeConfig struct {
	APIKey      string  `envconfig:"OPENAI_API_KEY" yaml:"api_key"`
	BaseURL     string  `envconfig:"PB_JUDGE_BASE_URL" yaml:"base_url"`
	Model       string  `envconfig:"PB_JUDGE_MODEL" yaml:"model"`
	Temperature float32 `envconfig:"PB_JUDGE_TEMPERATURE" yaml:"temperature"`
}

// RetryConfig holds retry and circuit breaker settings.
type RetryConfig struct {
	MaxAttempts    int           `envconfig:"PB_RETRY_MAX_ATTEMPTS" yaml:"max_attempts"`
	InitialBackoff time.Duration `envconfig:"PB_RETRY_INITIAL_BACKOFF" yaml:"initial_backoff"`
	MaxBackoff     time.Duration `envconfig:"PB_RETRY_MAX_BACKOFF" yaml:"max_backoff"`
	BreakerEnabled bool          `envconfig:"PB_BREAKER_ENABLED" yaml:"breaker_enabled"`
}

// CacheConfig holds search result cache settings. The cache lives for a
// single benchmark execution; the redis backend exists so interrupted
// development runs can be resumed without re-spending API quota.
type CacheConfig struct {
	Type     string        `envconfig:"PB_CACHE_TYPE" yaml:"type"`
	Size     int           `envconfig:"PB_CACHE_SIZE" yaml:"size"`
	TTL      time.Duration `envconfig:"PB_CACHE_TTL" yaml:"ttl"`
	RedisURL string        `envconfig:"PB_REDIS_URL" yaml:"redis_url"`
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Type         string `envconfig:"PB_BUS_TYPE" yaml:"type"`
	KafkaBrokers string `envconfig:"PB_KAFKA_BROKERS" yaml:"kafka_brokers"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	OutputFile      string `envconfig:"PB_OUTPUT_FILE" yaml:"output_file"`
	IncludeVerdicts bool   `envconfig:"PB_INCLUDE_VERDICTS" yaml:"include_verdicts"`
	VerdictLog      string `envconfig:"PB_VERDICT_LOG" yaml:"verdict_log"`
	MetricsOut      string `envconfig:"PB_METRICS_OUT" yaml:"metrics_out"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"PB_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"PB_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Dataset = DatasetConfig{
		Path: "data/people/simple_people_search.jsonl",
	}

	cfg.Run = RunConfig{
		Limit:            0,
		NumResults:       10,
		Searchers:        []string{"exa", "brave", "parallel"},
		Concurrency:      20,
		GradeConcurrency: 50,
		UngradedPolicy:   UngradedExclude,
	}

	cfg.Searchers = SearchersConfig{
		Exa: ExaConfig{
			BaseURL:    "https://api.exa.ai",
			Category:   "people",
			SearchType: "fast",
		},
		Brave: BraveConfig{
			BaseURL:    "https://api.search.brave.com/res/v1/web/search",
			SiteFilter: "linkedin.com/in",
		},
		Parallel: ParallelConfig{
			BaseURL:        "https://api.parallel.ai/v1beta/search",
			Processor:      "base",
			IncludeDomains: []string{"linkedin.com"},
		},
		Index: IndexConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "people_profiles",
			EmbedModel: "text-embedding-3-small",
		},
	}

	cfg.Judge = JudgeConfig{
		Model:       "gpt-4.1",
		Temperature: 0,
	}

	cfg.Retry = RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BreakerEnabled: true,
	}

	cfg.Cache = CacheConfig{
		Type:     "memory",
		Size:     10000,
		TTL:      0,
		RedisURL: "redis://localhost:6379",
	}

	cfg.Bus = BusConfig{
		Type: "memory",
	}

	cfg.Report = ReportConfig{
		IncludeVerdicts: false,
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Dataset.Path == "" {
		errs = append(errs, "dataset path must not be empty")
	}

	if c.Run.Limit < 0 {
		errs = append(errs, "limit must not be negative")
	}
	if c.Run.NumResults < 1 {
		errs = append(errs, "num_results must be positive")
	}
	if c.Run.Concurrency < 1 {
		errs = append(errs, "concurrency must be positive")
	}
	if c.Run.GradeConcurrency < 1 {
		errs = append(errs, "grade_concurrency must be positive")
	}
	if len(c.Run.Searchers) == 0 {
		errs = append(errs, "at least one searcher must be configured")
	}

	validPolicies := map[string]bool{UngradedExclude: true, UngradedZero: true}
	if !validPolicies[c.Run.UngradedPolicy] {
		errs = append(errs, fmt.Sprintf("invalid ungraded_policy: %s (must be exclude or zero)", c.Run.UngradedPolicy))
	}

	if c.Judge.Model == "" {
		errs = append(errs, "judge model must not be empty")
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, "retry max_attempts must be positive")
	}

	validCacheTypes := map[string]bool{"none": true, "memory": true, "redis": true}
	if !validCacheTypes[c.Cache.Type] {
		errs = append(errs, fmt.Sprintf("invalid cache type: %s (must be none, memory, or redis)", c.Cache.Type))
	}
	if c.Cache.Type == "redis" && c.Cache.RedisURL == "" {
		errs = append(errs, "redis cache requires redis_url")
	}

	validBusTypes := map[string]bool{"memory": true, "kafka": true}
	if !validBusTypes[c.Bus.Type] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory or kafka)", c.Bus.Type))
	}
	if c.Bus.Type == "kafka" && c.Bus.KafkaBrokers == "" {
		errs = append(errs, "kafka bus requires kafka_brokers")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	return nil
}
