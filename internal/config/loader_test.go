package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/0xJagger/poc-geo-tier-list/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TIERLIST_ADDR", ":8080")
			_ = os.Setenv("TIERLIST_SCORE_MODE", "clamp")
			_ = os.Setenv("TIERLIST_CATALOG_PATH", "/etc/tierlist/catalog.yaml")
			_ = os.Setenv("TIERLIST_PREPARE_QUEUE_SIZE", "4")
			_ = os.Setenv("TIERLIST_PREPARER_LATENCY_MIN_MS", "5")
			_ = os.Setenv("TIERLIST_PREPARER_LATENCY_MAX_MS", "10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ScoreMode, convey.ShouldEqual, "clamp")
				convey.So(cfg.CatalogPath, convey.ShouldEqual, "/etc/tierlist/catalog.yaml")
				convey.So(cfg.PrepareQueueSize, convey.ShouldEqual, 4)
				convey.So(cfg.PreparerLatencyMinMS, convey.ShouldEqual, 5)
				convey.So(cfg.PreparerLatencyMaxMS, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
# preparation goes to a remote service
addr: ":9090"  # inline comment
score_mode: reject
preparer_mode: http
preparer_url: "http://prep.local/v1/prepare"
preparer_timeout_ms: 2500
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TIERLIST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ScoreMode, convey.ShouldEqual, "reject")
				convey.So(cfg.PreparerMode, convey.ShouldEqual, config.PreparerHTTP)
				convey.So(cfg.PreparerURL, convey.ShouldEqual, "http://prep.local/v1/prepare")
				convey.So(cfg.PreparerTimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.PrepareQueueSize, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
score_mode: reject
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TIERLIST_CONFIG", tmpFile)
			_ = os.Setenv("TIERLIST_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ScoreMode, convey.ShouldEqual, "reject")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TIERLIST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("TIERLIST_CONFIG", "/nonexistent/tierlist.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("TIERLIST_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown score mode", func() {
			_ = os.Setenv("TIERLIST_SCORE_MODE", "lenient")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("TIERLIST_PREPARE_QUEUE_SIZE", "not_a_number")
			defer clearConfigEnvVars()

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
		"TIERLIST_CONFIG",
		"TIERLIST_ADDR",
		"TIERLIST_SCORE_MODE",
		"TIERLIST_CATALOG_PATH",
		"TIERLIST_PREPARE_QUEUE_SIZE",
		"TIERLIST_PREPARER_LATENCY_MIN_MS",
		"TIERLIST_PREPARER_LATENCY_MAX_MS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "tierlist-config-*.yaml")
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
