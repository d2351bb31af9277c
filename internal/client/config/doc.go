// Package config loads runtime configuration for the Sparkle CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST endpoint
//	-d string   path to the local database file
//	-i int      online status check interval (seconds)
//	-p int      OCR poll interval (seconds)
//	-n int      OCR poll attempt budget
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "https://sparkle.example.com",
//	  "database_path": "sparkle.db",
//	  "online_check_interval": "3s",
//	  "ocr_poll_interval": "10s",
//	  "ocr_poll_max_attempts": 30
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
