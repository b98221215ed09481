package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/guildscore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.PercentileThreshold, convey.ShouldEqual, 75)
				convey.So(cfg.ReportLimit, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GUILDSCORE_ADDR", ":8080")
			_ = os.Setenv("GUILDSCORE_SERVE", "true")
			_ = os.Setenv("GUILDSCORE_PERCENTILE_THRESHOLD", "90")
			_ = os.Setenv("GUILDSCORE_GUILD_NAME", "Method")
			_ = os.Setenv("GUILDSCORE_REPORT_LIMIT", "25")
			_ = os.Setenv("GUILDSCORE_REFRESH_INTERVAL", "90s")
			_ = os.Setenv("GUILDSCORE_CLIENT_ID", "id-123")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Serve, convey.ShouldBeTrue)
				convey.So(cfg.PercentileThreshold, convey.ShouldEqual, 90)
				convey.So(cfg.GuildName, convey.ShouldEqual, "Method")
				convey.So(cfg.GuildServer, convey.ShouldEqual, "Lightbringer")
				convey.So(cfg.ReportLimit, convey.ShouldEqual, 25)
				convey.So(cfg.RefreshInterval, convey.ShouldEqual, 90*time.Second)
				convey.So(cfg.ClientID, convey.ShouldEqual, "id-123")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
percentile_threshold: 50
guild_name: "Echo"
guild_server: "Tarren Mill"
guild_region: "EU"
report_limit: 10
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GUILDSCORE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PercentileThreshold, convey.ShouldEqual, 50)
				convey.So(cfg.GuildName, convey.ShouldEqual, "Echo")
				convey.So(cfg.GuildServer, convey.ShouldEqual, "Tarren Mill")
				convey.So(cfg.GuildRegion, convey.ShouldEqual, "EU")
				convey.So(cfg.ReportLimit, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
percentile_threshold: 50
report_limit: 10
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GUILDSCORE_CONFIG", tmpFile)
			_ = os.Setenv("GUILDSCORE_PERCENTILE_THRESHOLD", "80")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")             // From file
				convey.So(cfg.PercentileThreshold, convey.ShouldEqual, 80)   // Overridden by env
				convey.So(cfg.ReportLimit, convey.ShouldEqual, 10)           // From file
				convey.So(cfg.GuildName, convey.ShouldEqual, "Legal Tender") // From defaults
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GUILDSCORE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("GUILDSCORE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the percentile threshold is out of range", func() {
			_ = os.Setenv("GUILDSCORE_PERCENTILE_THRESHOLD", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "PercentileThreshold")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("GUILDSCORE_REPORT_LIMIT", "invalid")
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
		"GUILDSCORE_CONFIG",
		"GUILDSCORE_ADDR",
		"GUILDSCORE_SERVE",
		"GUILDSCORE_PERCENTILE_THRESHOLD",
		"GUILDSCORE_GUILD_NAME",
		"GUILDSCORE_REPORT_LIMIT",
		"GUILDSCORE_REFRESH_INTERVAL",
		"GUILDSCORE_CLIENT_ID",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "guildscore-config-*.yaml")
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
