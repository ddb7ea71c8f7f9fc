package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/gridiron/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.GeneratorModel, convey.ShouldEqual, "llama3-70b-8192")
			convey.So(cfg.GeneratorTemp, convey.ShouldEqual, 0.7)
			convey.So(cfg.GeneratorMaxTokens, convey.ShouldEqual, 512)
			convey.So(cfg.ContextMaxChars, convey.ShouldEqual, 20_000)
			convey.So(cfg.DefaultYear, convey.ShouldEqual, "2023")
			convey.So(cfg.DefaultSeasonType, convey.ShouldEqual, "REG")
			convey.So(cfg.DefaultWeek, convey.ShouldEqual, "1")
			convey.So(cfg.PrefetchEnabled, convey.ShouldBeFalse)
		})

		convey.Convey("Then durations should be derived from millisecond keys", func() {
			convey.So(cfg.GeneratorTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.UpstreamTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.CacheSweepInterval(), convey.ShouldEqual, time.Minute)
		})

		convey.Convey("Then missing credentials should be reported", func() {
			convey.So(cfg.Degraded(), convey.ShouldResemble, []string{"upstream_api_key", "generator_api_key"})
			cfg.UpstreamAPIKey = "k"
			convey.So(cfg.Degraded(), convey.ShouldResemble, []string{"generator_api_key"})
		})

		convey.Convey("Then an empty upstream base URL should be reported", func() {
			cfg.UpstreamAPIKey = "k"
			cfg.GeneratorAPIKey = "g"
			cfg.UpstreamBaseURL = " "
			convey.So(cfg.Degraded(), convey.ShouldResemble, []string{"upstream_base_url"})
		})

		convey.Convey("Then defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with a broken field", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"zero context limit", func(c *config.Config) { c.ContextMaxChars = 0 }},
			{"negative timeout", func(c *config.Config) { c.UpstreamTimeoutMS = -1 }},
			{"unknown season type", func(c *config.Config) { c.DefaultSeasonType = "OFF" }},
			{"prefetch without workers", func(c *config.Config) { c.PrefetchEnabled = true; c.PrefetchWorkers = 0 }},
		}
		for _, tc := range cases {
			convey.Convey("When the config has "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("A zero sweep interval disables the sweeper", func() {
			cfg := config.New()
			cfg.CacheSweepIntervalMS = 0
			convey.So(cfg.CacheSweepInterval(), convey.ShouldEqual, time.Duration(0))
		})
	})
}
