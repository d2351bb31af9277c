package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/sparkleapp/sparkle-cli/internal/client/cli"
	"github.com/sparkleapp/sparkle-cli/internal/client/config"
	"github.com/sparkleapp/sparkle-cli/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
