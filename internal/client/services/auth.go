// Package services contains application services for the Sparkle client:
// account authentication, the master-password vault session, and the
// document upload / OCR workflow.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sparkleapp/sparkle-cli/internal/client/api"
	"github.com/sparkleapp/sparkle-cli/internal/client/repositories/entries"
	"github.com/sparkleapp/sparkle-cli/internal/client/repositories/metadata"
	"github.com/sparkleapp/sparkle-cli/internal/dbx"
	"github.com/sparkleapp/sparkle-cli/internal/logging"
)

// AuthService defines account-level authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server; the token pair is persisted
//     locally so a restart does not require a new login.
//   - RestoreSession: load a previously persisted token pair into the client.
//   - Logout: invalidate the remote session and wipe all local state,
//     including the encrypted entry cache.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) error
	RestoreSession(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by the remote API client
// and a local SQL database for offline metadata.
type authService struct {
	client       api.Client
	db           *sql.DB
	metadataRepo metadata.Repository
	entryRepo    entries.Repository
	log          logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and
// repositories. It registers a token-change hook so refreshed tokens are
// persisted as soon as the client obtains them.
func NewAuthService(client api.Client, db *sql.DB, metadataRepo metadata.Repository, entryRepo entries.Repository, log logging.Logger) AuthService {
	s := &authService{client: client, db: db, metadataRepo: metadataRepo, entryRepo: entryRepo, log: log}

	client.OnTokensChanged(func(access, refresh string) {
		// Fired from inside request handling; no caller context to thread.
		ctx := context.Background()
		if err := s.saveTokens(ctx, access, refresh); err != nil {
			s.log.Warn(ctx, "persisting refreshed tokens failed", "error", err)
		}
	})

	return s
}

// saveTokens stores the token pair in a single transaction. An empty pair
// clears the persisted tokens (client-side logout).
func (a *authService) saveTokens(ctx context.Context, access, refresh string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if access == "" && refresh == "" {
			if err := a.metadataRepo.Delete(ctx, metadata.KeyAccessToken); err != nil {
				return err
			}
			return a.metadataRepo.Delete(ctx, metadata.KeyRefreshToken)
		}
		if err := a.metadataRepo.Set(ctx, metadata.KeyAccessToken, []byte(access)); err != nil {
			return err
		}
		return a.metadataRepo.Set(ctx, metadata.KeyRefreshToken, []byte(refresh))
	})
}

// Login authenticates against the server. The client fires the token hook on
// success, which persists the pair; here we only record the account email.
func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	if err := a.client.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	if err := a.metadataRepo.Set(ctx, metadata.KeyUsername, []byte(email)); err != nil {
		return fmt.Errorf("saving account email: %w", err)
	}
	return nil
}

// RestoreSession loads the persisted token pair into the API client.
// It reports whether a pair was found; an absent pair is not an error.
func (a *authService) RestoreSession(ctx context.Context) (bool, error) {
	access, err := a.metadataRepo.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return false, err
	}
	refresh, err := a.metadataRepo.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return false, err
	}
	if len(access) == 0 && len(refresh) == 0 {
		return false, nil
	}
	a.client.SetTokens(string(access), string(refresh))
	return true, nil
}

// Logout invalidates the remote session (best effort) and wipes all local
// state: metadata and the encrypted entry cache.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		a.log.Warn(ctx, "remote logout failed, clearing local state anyway", "error", err)
	}
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := a.entryRepo.DeleteAll(ctx); err != nil {
			return err
		}
		return a.metadataRepo.Clear(ctx)
	})
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
