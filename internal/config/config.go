// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Durations are carried as integer milliseconds (`*_ms` keys) and exposed
//   as time.Duration through accessor methods.
// - New returns the defaults; Load layers file and environment on top.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Returned by Load and Validate; match with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// UpstreamBaseURL is the root of the NFL statistics API.
	UpstreamBaseURL string `koanf:"upstream_base_url"`
	// UpstreamAPIKey is sent as the api_key query parameter.
	UpstreamAPIKey string `koanf:"upstream_api_key"`
	// UpstreamTimeoutMS bounds each upstream request.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// GeneratorBaseURL is an OpenAI-compatible chat completions endpoint root.
	GeneratorBaseURL   string  `koanf:"generator_base_url"`
	GeneratorAPIKey    string  `koanf:"generator_api_key"`
	GeneratorModel     string  `koanf:"generator_model"`
	GeneratorTemp      float64 `koanf:"generator_temperature"`
	GeneratorMaxTokens int     `koanf:"generator_max_tokens"`
	GeneratorTimeoutMS int     `koanf:"generator_timeout_ms"`

	// ContextMaxChars caps the serialized context handed to the generator.
	ContextMaxChars int `koanf:"context_max_chars"`

	// Season used when a question does not name one.
	DefaultYear       string `koanf:"default_year"`
	DefaultSeasonType string `koanf:"default_season_type"`
	DefaultWeek       string `koanf:"default_week"`

	// CacheSweepIntervalMS sets how often expired cache entries are pruned.
	// Zero disables the sweeper.
	CacheSweepIntervalMS int `koanf:"cache_sweep_interval_ms"`

	// Prefetch warms the cache in the background at startup and after clears.
	PrefetchEnabled   bool `koanf:"prefetch_enabled"`
	PrefetchWorkers   int  `koanf:"prefetch_workers"`
	PrefetchQueueSize int  `koanf:"prefetch_queue_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8000",
		UpstreamBaseURL:      "https://api.sportradar.com/nfl/official/trial/v7",
		UpstreamTimeoutMS:    10_000,
		GeneratorBaseURL:     "https://api.groq.com/openai/v1",
		GeneratorModel:       "llama3-70b-8192",
		GeneratorTemp:        0.7,
		GeneratorMaxTokens:   512,
		GeneratorTimeoutMS:   30_000,
		ContextMaxChars:      20_000,
		DefaultYear:          "2023",
		DefaultSeasonType:    "REG",
		DefaultWeek:          "1",
		CacheSweepIntervalMS: 60_000,
		PrefetchEnabled:      false,
		PrefetchWorkers:      2,
		PrefetchQueueSize:    16,
	}
}

// UpstreamTimeout returns the per-request upstream deadline.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// GeneratorTimeout returns the per-call generator deadline.
func (c *Config) GeneratorTimeout() time.Duration {
	return time.Duration(c.GeneratorTimeoutMS) * time.Millisecond
}

// CacheSweepInterval returns the pruning period, zero when disabled.
func (c *Config) CacheSweepInterval() time.Duration {
	if c.CacheSweepIntervalMS <= 0 {
		return 0
	}
	return time.Duration(c.CacheSweepIntervalMS) * time.Millisecond
}

// Degraded lists the upstream and generator settings that are missing. The
// service still starts without them; affected endpoints report
// unavailability instead.
func (c *Config) Degraded() []string {
	var missing []string
	if strings.TrimSpace(c.UpstreamBaseURL) == "" {
		missing = append(missing, "upstream_base_url")
	}
	if strings.TrimSpace(c.UpstreamAPIKey) == "" {
		missing = append(missing, "upstream_api_key")
	}
	if strings.TrimSpace(c.GeneratorAPIKey) == "" {
		missing = append(missing, "generator_api_key")
	}
	return missing
}

// Validate checks invariants that would otherwise surface as runtime failures.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.ContextMaxChars <= 0 {
		return fmt.Errorf("%w: context_max_chars must be positive", ErrInvalidConfig)
	}
	if c.UpstreamTimeoutMS <= 0 || c.GeneratorTimeoutMS <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	switch strings.ToUpper(c.DefaultSeasonType) {
	case "REG", "PRE", "PST":
	default:
		return fmt.Errorf("%w: default_season_type %q must be REG, PRE or PST", ErrInvalidConfig, c.DefaultSeasonType)
	}
	if c.PrefetchEnabled && (c.PrefetchWorkers <= 0 || c.PrefetchQueueSize <= 0) {
		return fmt.Errorf("%w: prefetch needs positive workers and queue size", ErrInvalidConfig)
	}
	return nil
}
