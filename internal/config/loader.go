package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "GRIDIRON_"
	envFileKey = "GRIDIRON_CONFIG"
)

// legacyEnv maps environment names used by earlier deployments to keys.
var legacyEnv = map[string]string{ //nolint:gochecknoglobals // read-only lookup table
	"SPORTSRADAR_API_KEY": "upstream_api_key",
	"NFL_BASE_URL":        "upstream_base_url",
	"GROQ_API_KEY":        "generator_api_key",
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GRIDIRON_CONFIG is set
//  3. legacy env names (SPORTSRADAR_API_KEY, NFL_BASE_URL, GROQ_API_KEY)
//  4. env (prefix GRIDIRON_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFileKey); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	legacy := env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// GRIDIRON_UPSTREAM_API_KEY -> upstream_api_key. Keys are flat, so the
	// underscores stay and match the koanf tags directly.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.DefaultSeasonType = strings.ToUpper(cfg.DefaultSeasonType)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
