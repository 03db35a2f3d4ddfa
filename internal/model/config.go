package model

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the complete runtime configuration
type Config struct {
	Linkup       LinkupConfig     `yaml:"linkup" mapstructure:"linkup"`
	HTTP         HTTPConfig       `yaml:"http" mapstructure:"http"`
	Retry        RetryConfig      `yaml:"retry" mapstructure:"retry"`
	RateLimiting RateLimitConfig  `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Fetch        FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Structured   StructuredConfig `yaml:"structured" mapstructure:"structured"`
	LLM          LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Resolve      ResolveConfig    `yaml:"resolve" mapstructure:"resolve"`
	Batch        BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Notify       NotifyConfig     `yaml:"notify" mapstructure:"notify"`
	Output       OutputConfig     `yaml:"output" mapstructure:"output"`
}

// LinkupConfig points at the search/fetch API
type LinkupConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"-" mapstructure:"-"` // From LINKUP_API_KEY only
}

// HTTPConfig controls outbound HTTP behaviour
type HTTPConfig struct {
	SearchTimeout     time.Duration `yaml:"search_timeout" mapstructure:"search_timeout"`
	StructuredTimeout time.Duration `yaml:"structured_timeout" mapstructure:"structured_timeout"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// RetryConfig controls the resilient query client
type RetryConfig struct {
	MaxRetries        int           `yaml:"max_retries" mapstructure:"max_retries"`
	OverloadThreshold int           `yaml:"overload_threshold" mapstructure:"overload_threshold"`
	DefaultRetryAfter time.Duration `yaml:"default_retry_after" mapstructure:"default_retry_after"`
	MaxRetryAfter     time.Duration `yaml:"max_retry_after" mapstructure:"max_retry_after"`
}

// RateLimitConfig paces outbound queries per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls the evidence response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir,omitempty" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// FetchConfig selects the page fetch backend
type FetchConfig struct {
	Backend       string `yaml:"backend" mapstructure:"backend"` // linkup, local
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
	BrowserBin    string `yaml:"browser_bin,omitempty" mapstructure:"browser_bin"`
}

// StructuredConfig selects the structured extraction backend
type StructuredConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // linkup, llm
}

// LLMConfig configures the LLM extraction backend
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"-"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ResolveConfig tunes the entity resolver and orchestrator
type ResolveConfig struct {
	MaxPeople       int      `yaml:"max_people" mapstructure:"max_people"`
	MediumSources   []string `yaml:"medium_sources" mapstructure:"medium_sources"`
	MinMediumTokens int      `yaml:"min_medium_tokens" mapstructure:"min_medium_tokens"`
	Fallback        bool     `yaml:"fallback" mapstructure:"fallback"`
	DiscoverDomain  bool     `yaml:"discover_domain" mapstructure:"discover_domain"`
	CrawlWebsite    bool     `yaml:"crawl_website" mapstructure:"crawl_website"`
	EnrichProfiles  bool     `yaml:"enrich_profiles" mapstructure:"enrich_profiles"`
	NetworkResults  int      `yaml:"network_results" mapstructure:"network_results"`
}

// BatchConfig controls multi-organization runs
type BatchConfig struct {
	Delay                  time.Duration `yaml:"delay" mapstructure:"delay"`
	MaxConsecutiveFailures int           `yaml:"max_consecutive_failures" mapstructure:"max_consecutive_failures"`
	FailurePause           time.Duration `yaml:"failure_pause" mapstructure:"failure_pause"`
	RateLimitPause         time.Duration `yaml:"rate_limit_pause" mapstructure:"rate_limit_pause"`
}

// NotifyConfig controls webhook delivery
type NotifyConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	JobsWebhook     string        `yaml:"-" mapstructure:"-"`
	ContactsWebhook string        `yaml:"-" mapstructure:"-"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Retries         int           `yaml:"retries" mapstructure:"retries"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Linkup: LinkupConfig{
			BaseURL: "https://api.linkup.so/v1",
		},
		HTTP: HTTPConfig{
			SearchTimeout:     30 * time.Second,
			StructuredTimeout: 60 * time.Second,
			FetchTimeout:      60 * time.Second,
			UserAgent:         "driverjobpost/0.1",
			MaxBodyBytes:      2_000_000,
		},
		Retry: RetryConfig{
			MaxRetries:        3,
			OverloadThreshold: 5,
			DefaultRetryAfter: 10 * time.Second,
			MaxRetryAfter:     60 * time.Second,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: time.Hour,
			DiskTTL:   24 * time.Hour,
		},
		Fetch: FetchConfig{
			Backend:       "linkup",
			RespectRobots: true,
		},
		Structured: StructuredConfig{
			Backend: "linkup",
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   60,
			MaxTokens: 1000,
		},
		Resolve: ResolveConfig{
			MaxPeople:       MaxPeoplePerCompany,
			MediumSources:   []string{"linkedin", "web_search"},
			MinMediumTokens: 2,
			Fallback:        true,
			DiscoverDomain:  true,
			CrawlWebsite:    true,
			EnrichProfiles:  true,
			NetworkResults:  5,
		},
		Batch: BatchConfig{
			Delay:                  time.Second,
			MaxConsecutiveFailures: 3,
			FailurePause:           60 * time.Second,
			RateLimitPause:         5 * time.Minute,
		},
		Notify: NotifyConfig{
			Enabled: true,
			Timeout: 15 * time.Second,
			Retries: 2,
		},
		Output: OutputConfig{
			Dir: "./driverjobpost-reports",
		},
	}
}

// Secrets are credentials and endpoints read from the environment only
type Secrets struct {
	LinkupAPIKey    string `env:"LINKUP_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OllamaBaseURL   string `env:"OLLAMA_BASE_URL"`
	JobsWebhook     string `env:"CLAY_JOBS_WEBHOOK"`
	ContactsWebhook string `env:"CLAY_CONTACTS_WEBHOOK"`
}

// LoadSecrets parses Secrets from environment variables
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return Secrets{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// Apply copies secrets into the configuration
func (s Secrets) Apply(cfg *Config) {
	cfg.Linkup.APIKey = s.LinkupAPIKey
	cfg.Notify.JobsWebhook = s.JobsWebhook
	cfg.Notify.ContactsWebhook = s.ContactsWebhook
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = s.OpenAIAPIKey
	case "ollama":
		if s.OllamaBaseURL != "" {
			cfg.LLM.BaseURL = s.OllamaBaseURL
		}
	}
}
