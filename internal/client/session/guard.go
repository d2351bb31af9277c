// Package session implements the master-password session guard: a time-boxed
// local verification record gating access to the password vault.
//
// The guard is the single authority on "is the vault currently unlocked".
// It persists one scalar — the session expiry granted by the remote verifier —
// in an injected key-value store, and detects expiry lazily on read: there is
// no background timer, the next CheckValidity after the window closes clears
// the record and reports unverified.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sparkleapp/sparkle-cli/internal/common"
	"github.com/sparkleapp/sparkle-cli/internal/logging"
)

// validUntilKey is the single scalar the guard persists (ms since epoch).
const validUntilKey = "master_valid_until"

// Store is the minimal key-value persistence the guard needs. The metadata
// repository satisfies it. Get returns (nil, nil) for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Verifier checks a candidate master password remotely and returns the
// session expiry it granted.
type Verifier interface {
	VerifyMasterPassword(ctx context.Context, secret []byte) (time.Time, error)
}

type Guard struct {
	store    Store
	verifier Verifier
	log      logging.Logger
	now      func() time.Time
}

func NewGuard(store Store, verifier Verifier, log logging.Logger) *Guard {
	return &Guard{store: store, verifier: verifier, log: log, now: time.Now}
}

// CheckValidity reports whether the vault is currently unlocked. An expired
// record is cleared eagerly as a side effect of the read. Storage failures
// are logged and treated as unverified; this method never returns an error.
func (g *Guard) CheckValidity(ctx context.Context) bool {
	raw, err := g.store.Get(ctx, validUntilKey)
	if err != nil {
		g.log.Warn(ctx, "session store read failed, treating as unverified", "error", err)
		return false
	}
	if len(raw) == 0 {
		return false
	}

	validUntil, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		g.log.Warn(ctx, "corrupt session expiry, clearing", "value", string(raw))
		g.clear(ctx)
		return false
	}

	if g.now().UnixMilli() >= validUntil {
		g.clear(ctx)
		return false
	}
	return true
}

// Verify forwards the candidate secret to the remote verifier and, on
// success, persists the granted expiry. The two failure kinds keep their
// identity: common.ErrVerificationFailed means the secret was rejected,
// common.ErrUnavailable means the verifier could not be reached. Verify
// never retries — each call may count against server-side rate limits.
func (g *Guard) Verify(ctx context.Context, secret []byte) error {
	if len(secret) == 0 {
		return fmt.Errorf("%w: empty master password", common.ErrInvalidInput)
	}

	validUntil, err := g.verifier.VerifyMasterPassword(ctx, secret)
	if err != nil {
		return err
	}
	return g.EstablishSession(ctx, validUntil)
}

// EstablishSession persists the expiry directly, without consulting the
// remote verifier. Used right after a password-setup flow that already
// proved the secret server-side. Idempotent; an earlier timestamp than the
// current one is accepted and shortens the window.
func (g *Guard) EstablishSession(ctx context.Context, validUntil time.Time) error {
	value := strconv.FormatInt(validUntil.UnixMilli(), 10)
	if err := g.store.Set(ctx, validUntilKey, []byte(value)); err != nil {
		return fmt.Errorf("persisting session expiry: %w", err)
	}
	g.log.Debug(ctx, "master password session established", "valid_until", validUntil)
	return nil
}

// ClearSession deletes the persisted expiry. Idempotent; used on logout,
// password change, and manual lock.
func (g *Guard) ClearSession(ctx context.Context) error {
	return g.store.Delete(ctx, validUntilKey)
}

func (g *Guard) clear(ctx context.Context) {
	if err := g.store.Delete(ctx, validUntilKey); err != nil {
		g.log.Warn(ctx, "clearing expired session failed", "error", err)
	}
}
