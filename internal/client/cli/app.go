package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"time"

	"github.com/sparkleapp/sparkle-cli/internal/client/api"
	"github.com/sparkleapp/sparkle-cli/internal/client/config"
	"github.com/sparkleapp/sparkle-cli/internal/client/services"
	"github.com/sparkleapp/sparkle-cli/internal/client/session"
	"github.com/sparkleapp/sparkle-cli/internal/client/storage"
	"github.com/sparkleapp/sparkle-cli/internal/client/upload"
	"github.com/sparkleapp/sparkle-cli/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	vault       services.VaultService
	files       services.FileService
	userName    string
	Mode        Mode
	reader      *bufio.Reader
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {

	ctx := context.Background()

	store, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := api.NewRESTClient(c.ServerBaseURL, logger)

	guard := session.NewGuard(store.Metadata, apiClient, logger)
	workflow := upload.NewWorkflow(apiClient, logger)
	policy := upload.Policy{
		MaxAttempts:          c.OCRPollMaxAttempts,
		Interval:             c.OCRPollInterval,
		CountTransportErrors: true,
	}

	as := services.NewAuthService(apiClient, store.DB, store.Metadata, store.Entries, logger)
	vs := services.NewVaultService(apiClient, guard, store.Entries, store.Metadata, logger)
	fs := services.NewFileService(apiClient, workflow, policy, logger)

	return &App{
		config:      c,
		authService: as,
		vault:       vs,
		files:       fs,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) isUnlocked() bool {
	return a.vault.Unlocked(context.Background())
}

// Run restores any persisted login, starts the connectivity watcher and
// hands control to the REPL. It blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)

	if found, err := a.authService.RestoreSession(ctx); err != nil {
		log.Printf("restoring session: %s", err.Error())
	} else if found {
		log.Println("Previous login restored")
	}

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	log.Println("Welcome to Sparkle CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if a.isUnlocked() {
		s = s + " unlocked"
	}
	return s
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				if a.Mode == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
