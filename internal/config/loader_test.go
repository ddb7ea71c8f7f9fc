package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/gridiron/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.ContextMaxChars, convey.ShouldEqual, 20_000)
				convey.So(cfg.UpstreamAPIKey, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GRIDIRON_ADDR", ":8080")
			_ = os.Setenv("GRIDIRON_CONTEXT_MAX_CHARS", "5000")
			_ = os.Setenv("GRIDIRON_GENERATOR_TEMPERATURE", "0.2")
			_ = os.Setenv("GRIDIRON_PREFETCH_ENABLED", "true")
			_ = os.Setenv("GRIDIRON_DEFAULT_SEASON_TYPE", "pst")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ContextMaxChars, convey.ShouldEqual, 5000)
				convey.So(cfg.GeneratorTemp, convey.ShouldEqual, 0.2)
				convey.So(cfg.PrefetchEnabled, convey.ShouldBeTrue)
				convey.So(cfg.DefaultSeasonType, convey.ShouldEqual, "PST")
			})
		})

		convey.Convey("When only legacy credential variables are set", func() {
			_ = os.Setenv("SPORTSRADAR_API_KEY", "sr-key")
			_ = os.Setenv("NFL_BASE_URL", "http://stats.local/v7")
			_ = os.Setenv("GROQ_API_KEY", "gq-key")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they should populate the matching keys", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.UpstreamAPIKey, convey.ShouldEqual, "sr-key")
				convey.So(cfg.UpstreamBaseURL, convey.ShouldEqual, "http://stats.local/v7")
				convey.So(cfg.GeneratorAPIKey, convey.ShouldEqual, "gq-key")
				convey.So(cfg.Degraded(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When legacy and prefixed variables disagree", func() {
			_ = os.Setenv("SPORTSRADAR_API_KEY", "legacy")
			_ = os.Setenv("GRIDIRON_UPSTREAM_API_KEY", "prefixed")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the prefixed variable should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.UpstreamAPIKey, convey.ShouldEqual, "prefixed")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# local overrides
addr: ":9090"
generator_model: "llama3-8b-8192"
cache_sweep_interval_ms: 0
default_year: "2024"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("GRIDIRON_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.GeneratorModel, convey.ShouldEqual, "llama3-8b-8192")
				convey.So(cfg.CacheSweepInterval(), convey.ShouldEqual, time.Duration(0))
				convey.So(cfg.DefaultYear, convey.ShouldEqual, "2024")
				convey.So(cfg.DefaultWeek, convey.ShouldEqual, "1")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\ndefault_week: \"3\"\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("GRIDIRON_CONFIG", tmpFile)
			_ = os.Setenv("GRIDIRON_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.DefaultWeek, convey.ShouldEqual, "3")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("GRIDIRON_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("GRIDIRON_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("GRIDIRON_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("GRIDIRON_CONTEXT_MAX_CHARS", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"GRIDIRON_CONFIG",
		"GRIDIRON_ADDR",
		"GRIDIRON_CONTEXT_MAX_CHARS",
		"GRIDIRON_GENERATOR_TEMPERATURE",
		"GRIDIRON_PREFETCH_ENABLED",
		"GRIDIRON_DEFAULT_SEASON_TYPE",
		"GRIDIRON_UPSTREAM_API_KEY",
		"SPORTSRADAR_API_KEY",
		"NFL_BASE_URL",
		"GROQ_API_KEY",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "gridiron-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
