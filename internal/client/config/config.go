package config

import "time"

// Config holds runtime settings for the Sparkle CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST endpoint.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DatabasePath: location of the local SQLite database.
//   - OCRPollInterval: delay between OCR status polls.
//   - OCRPollMaxAttempts: total polling budget for one upload.
//
// Units: intervals are time.Duration values (e.g., 10*time.Second).
type Config struct {
	ServerBaseURL       string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	OCRPollInterval     time.Duration
	OCRPollMaxAttempts  int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.DatabasePath = "sparkle.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.OCRPollInterval = 10 * time.Second
	c.OCRPollMaxAttempts = 30
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
