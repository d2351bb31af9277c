package config

import (
	"flag"
	"os"
	"time"

	"github.com/sparkleapp/sparkle-cli/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-d string   path to the local database file (default from Config)
//	-i int      online check interval in seconds (default from Config)
//	-p int      OCR poll interval in seconds (default from Config)
//	-n int      OCR poll attempt budget (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-p", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL to access server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to local database file")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	pollInterval := fs.Int("p", int(cfg.OCRPollInterval.Seconds()), "OCR poll interval (in seconds)")
	fs.IntVar(&cfg.OCRPollMaxAttempts, "n", cfg.OCRPollMaxAttempts, "OCR poll attempt budget")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.OCRPollInterval = time.Duration(*pollInterval) * time.Second
}
