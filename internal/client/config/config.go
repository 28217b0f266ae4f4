package config

import "time"

// Config holds runtime settings for the teamhub CLI.
//
// Fields:
//   - APIBaseURL: base URL of the REST API, e.g. "http://localhost:8080/api".
//   - RequestTimeout: per-request HTTP timeout, also bounds token refresh.
//   - SessionLength: inactivity window after which the session is logged out.
//   - WarningThreshold: how long before expiry the warning is shown.
//   - DBPath: SQLite file holding the refresh token and session expiry.
//   - LogLevel / LogBackend: see package logging.
type Config struct {
	APIBaseURL       string
	RequestTimeout   time.Duration
	SessionLength    time.Duration
	WarningThreshold time.Duration
	DBPath           string
	LogLevel         string
	LogBackend       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080/api"
	c.RequestTimeout = 10 * time.Second
	c.SessionLength = 15 * time.Minute
	c.WarningThreshold = 30 * time.Second
	c.DBPath = "teamhub.db"
	c.LogLevel = "info"
	c.LogBackend = "slog"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
