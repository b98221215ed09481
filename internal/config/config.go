// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and GUILDSCORE_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"omitempty,oneof=text json"`

	// Serve keeps the process running and exposes the scoreboard over HTTP.
	// When false the scores are computed once and written to stdout.
	Serve bool `koanf:"serve"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required_if=Serve true"`

	// RefreshInterval is how often serve mode recomputes the scoreboard.
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"min=0"`

	// PercentileThreshold selects the nearest-rank percentile for parse and
	// item-level scores.
	PercentileThreshold int `koanf:"percentile_threshold" validate:"min=1,max=100"`

	// GuildName, GuildServer and GuildRegion identify the guild on the provider.
	GuildName   string `koanf:"guild_name" validate:"required"`
	GuildServer string `koanf:"guild_server" validate:"required"`
	GuildRegion string `koanf:"guild_region" validate:"required"`

	// ReportLimit bounds the number of reports requested per run.
	ReportLimit int `koanf:"report_limit" validate:"min=1"`

	// ClientID and ClientSecret are the provider OAuth client credentials.
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`

	// APIURL and TokenURL locate the provider GraphQL and OAuth endpoints.
	APIURL   string `koanf:"api_url" validate:"required,url"`
	TokenURL string `koanf:"token_url" validate:"required,url"`

	// RequestTimeout caps a single provider HTTP round trip.
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`

	// RequestsPerSecond throttles provider calls; 0 disables throttling.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"min=0"`

	// MaxRetries is the number of attempts per provider call.
	MaxRetries int `koanf:"max_retries" validate:"min=1"`

	// MaxScoresLimit caps GET /scores?limit.
	MaxScoresLimit int `koanf:"max_scores_limit" validate:"min=1"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Serve:               false,
		Addr:                ":9080",
		RefreshInterval:     15 * time.Minute,
		PercentileThreshold: 75,
		GuildName:           "Legal Tender",
		GuildServer:         "Lightbringer",
		GuildRegion:         "US",
		ReportLimit:         5,
		APIURL:              "https://www.warcraftlogs.com/api/v2/client",
		TokenURL:            "https://www.warcraftlogs.com/oauth/token",
		RequestTimeout:      30 * time.Second,
		RequestsPerSecond:   2,
		MaxRetries:          3,
		MaxScoresLimit:      500,
	}
}
