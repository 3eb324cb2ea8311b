package config

import "time"

// Config holds runtime settings for the BudgetKeeper CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API.
//   - DatabaseDSN: SQLite DSN of the local offline database.
//   - RequestTimeout: per-request deadline for backend calls.
//   - OnlineCheckInterval: how often the client probes connectivity.
//   - OnlineDebounce: how long a regained connection must hold before
//     it is trusted.
//   - CacheMaxAge: staleness bound for cached reads.
//   - MaxReplayAttempts: failed replays an operation survives before
//     being abandoned.
type Config struct {
	ServerBaseURL       string
	DatabaseDSN         string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	OnlineDebounce      time.Duration
	CacheMaxAge         time.Duration
	MaxReplayAttempts   int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabaseDSN = "budgetkeeper.db"
	c.RequestTimeout = 5 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.OnlineDebounce = 2 * time.Second
	c.CacheMaxAge = 24 * time.Hour
	c.MaxReplayAttempts = 5
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
