package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/sparkleapp/sparkle-cli/internal/flagx"
	"github.com/sparkleapp/sparkle-cli/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "10s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerBaseURL       string         `json:"server_base_url"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	OCRPollInterval     timex.Duration `json:"ocr_poll_interval"`
	OCRPollMaxAttempts  int            `json:"ocr_poll_max_attempts"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c/-config flags via flagx.JsonConfigFlags();
// when no path is given the function returns without touching cfg.
// Read or unmarshal errors panic (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.OCRPollInterval.Duration != 0 {
		cfg.OCRPollInterval = time.Duration(jc.OCRPollInterval.Duration)
	}
	if jc.OCRPollMaxAttempts != 0 {
		cfg.OCRPollMaxAttempts = jc.OCRPollMaxAttempts
	}
}
