package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sparkleapp/sparkle-cli/internal/client/api"
	"github.com/sparkleapp/sparkle-cli/internal/client/models"
	"github.com/sparkleapp/sparkle-cli/internal/client/repositories/entries"
	"github.com/sparkleapp/sparkle-cli/internal/client/repositories/metadata"
	"github.com/sparkleapp/sparkle-cli/internal/client/session"
	"github.com/sparkleapp/sparkle-cli/internal/common"
	"github.com/sparkleapp/sparkle-cli/internal/cryptox"
	"github.com/sparkleapp/sparkle-cli/internal/logging"
)

// cacheSaltLen is the size of the per-device salt used to derive the local
// cache encryption key.
const cacheSaltLen = 32

// VaultService manages the master-password session and the password entries
// behind it. Every read or write of vault data is gated on the session
// guard; a closed session yields common.ErrAuthRequired without touching
// the network.
type VaultService interface {
	Unlock(ctx context.Context, secret []byte) error
	Lock(ctx context.Context) error
	Unlocked(ctx context.Context) bool

	MasterPasswordSet(ctx context.Context) (bool, error)
	SetupMasterPassword(ctx context.Context, newSecret, confirmSecret []byte) error
	ChangeMasterPassword(ctx context.Context, current, newSecret, confirmSecret []byte) error

	List(ctx context.Context, filter models.EntryFilter) ([]models.PasswordEntry, error)
	Add(ctx context.Context, entry *models.PasswordEntry) (*models.PasswordEntry, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

type vaultService struct {
	client       api.Client
	guard        *session.Guard
	entryRepo    entries.Repository
	metadataRepo metadata.Repository
	log          logging.Logger

	mu       sync.Mutex
	secret   []byte // current master password, held while unlocked
	cacheKey []byte // derived key for the offline entry cache
}

func NewVaultService(client api.Client, guard *session.Guard, entryRepo entries.Repository, metadataRepo metadata.Repository, log logging.Logger) VaultService {
	return &vaultService{
		client:       client,
		guard:        guard,
		entryRepo:    entryRepo,
		metadataRepo: metadataRepo,
		log:          log,
	}
}

// Unlock verifies the candidate master password remotely via the guard and,
// on success, derives the cache key for offline entry storage. The guard
// persists the granted session window.
func (s *vaultService) Unlock(ctx context.Context, secret []byte) error {
	if err := s.guard.Verify(ctx, secret); err != nil {
		return err
	}
	return s.holdSecret(ctx, secret)
}

// holdSecret keeps the secret in memory for request headers and derives the
// cache encryption key from it and the per-device salt.
func (s *vaultService) holdSecret(ctx context.Context, secret []byte) error {
	salt, err := s.cacheSalt(ctx)
	if err != nil {
		return fmt.Errorf("cache salt: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.secret)
	common.WipeByteArray(s.cacheKey)
	s.secret = append([]byte(nil), secret...)
	s.cacheKey = cryptox.DeriveCacheKey(secret, salt)
	return nil
}

// cacheSalt returns the per-device salt, generating and persisting one on
// first use.
func (s *vaultService) cacheSalt(ctx context.Context) ([]byte, error) {
	salt, err := s.metadataRepo.Get(ctx, metadata.KeyCacheSalt)
	if err != nil {
		return nil, err
	}
	if len(salt) > 0 {
		return salt, nil
	}
	salt = common.GenerateRandByteArray(cacheSaltLen)
	if err := s.metadataRepo.Set(ctx, metadata.KeyCacheSalt, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Lock closes the session and wipes the held key material. Idempotent.
func (s *vaultService) Lock(ctx context.Context) error {
	s.mu.Lock()
	common.WipeByteArray(s.secret)
	common.WipeByteArray(s.cacheKey)
	s.secret = nil
	s.cacheKey = nil
	s.mu.Unlock()

	return s.guard.ClearSession(ctx)
}

// Unlocked reports whether the master-password session is currently open.
func (s *vaultService) Unlocked(ctx context.Context) bool {
	return s.guard.CheckValidity(ctx)
}

func (s *vaultService) MasterPasswordSet(ctx context.Context) (bool, error) {
	return s.client.MasterPasswordStatus(ctx)
}

// SetupMasterPassword creates the master password on the server and opens a
// session with it right away, so the user is not asked to verify the
// password they just typed.
func (s *vaultService) SetupMasterPassword(ctx context.Context, newSecret, confirmSecret []byte) error {
	if _, err := s.client.SetupMasterPassword(ctx, newSecret, confirmSecret); err != nil {
		return err
	}
	return s.Unlock(ctx, newSecret)
}

// ChangeMasterPassword rotates the master password. Any existing session is
// closed first; a new one is opened with the new secret on success.
func (s *vaultService) ChangeMasterPassword(ctx context.Context, current, newSecret, confirmSecret []byte) error {
	if err := s.client.ChangeMasterPassword(ctx, current, newSecret, confirmSecret); err != nil {
		return err
	}
	if err := s.guard.ClearSession(ctx); err != nil {
		s.log.Warn(ctx, "clearing old session after password change failed", "error", err)
	}
	return s.Unlock(ctx, newSecret)
}

// heldSecret returns a copy of the in-memory master password, or
// common.ErrAuthRequired when the session is closed or the secret was never
// captured in this process.
func (s *vaultService) heldSecret(ctx context.Context) ([]byte, error) {
	if !s.guard.CheckValidity(ctx) {
		return nil, common.ErrAuthRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.secret) == 0 {
		// Session record survived a restart, the password did not.
		return nil, common.ErrAuthRequired
	}
	return append([]byte(nil), s.secret...), nil
}

// List returns vault entries. Online results refresh the encrypted local
// cache; when the server is unreachable the cache serves the list instead.
func (s *vaultService) List(ctx context.Context, filter models.EntryFilter) ([]models.PasswordEntry, error) {
	secret, err := s.heldSecret(ctx)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(secret)

	items, err := s.client.ListEntries(ctx, filter, secret)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			s.log.Info(ctx, "server unreachable, serving cached entries")
			return s.listCached(ctx, filter)
		}
		return nil, err
	}

	if err := s.refreshCache(ctx, items); err != nil {
		s.log.Warn(ctx, "refreshing entry cache failed", "error", err)
	}
	return items, nil
}

// refreshCache replaces the encrypted cache with the given entries.
func (s *vaultService) refreshCache(ctx context.Context, items []models.PasswordEntry) error {
	s.mu.Lock()
	key := append([]byte(nil), s.cacheKey...)
	s.mu.Unlock()
	if len(key) == 0 {
		return nil
	}
	defer common.WipeByteArray(key)

	if err := s.entryRepo.DeleteAll(ctx); err != nil {
		return err
	}
	for i := range items {
		ciphertext, nonce, err := cryptox.EncryptEntry(&items[i], key)
		if err != nil {
			return err
		}
		cached := &entries.CachedEntry{ID: items[i].ID, Payload: ciphertext, Nonce: nonce}
		if err := s.entryRepo.Insert(ctx, cached); err != nil {
			return err
		}
	}
	return nil
}

// listCached decrypts the offline cache and applies the filter locally.
func (s *vaultService) listCached(ctx context.Context, filter models.EntryFilter) ([]models.PasswordEntry, error) {
	s.mu.Lock()
	key := append([]byte(nil), s.cacheKey...)
	s.mu.Unlock()
	if len(key) == 0 {
		return nil, common.ErrUnavailable
	}
	defer common.WipeByteArray(key)

	rows, err := s.entryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.PasswordEntry, 0, len(rows))
	for _, row := range rows {
		var e models.PasswordEntry
		if err := cryptox.DecryptEntry(row.Payload, row.Nonce, key, &e); err != nil {
			s.log.Warn(ctx, "cached entry decryption failed, skipping", "id", row.ID, "error", err)
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.Type != "" && e.EntryType != filter.Type {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

// Add creates a new entry on the server and mirrors it into the cache.
func (s *vaultService) Add(ctx context.Context, entry *models.PasswordEntry) (*models.PasswordEntry, error) {
	secret, err := s.heldSecret(ctx)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(secret)

	created, err := s.client.CreateEntry(ctx, entry, secret)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	key := append([]byte(nil), s.cacheKey...)
	s.mu.Unlock()
	if len(key) > 0 && created.ID != "" {
		ciphertext, nonce, encErr := cryptox.EncryptEntry(created, key)
		if encErr == nil {
			if insErr := s.entryRepo.Insert(ctx, &entries.CachedEntry{ID: created.ID, Payload: ciphertext, Nonce: nonce}); insErr != nil {
				s.log.Warn(ctx, "caching created entry failed", "error", insErr)
			}
		}
		common.WipeByteArray(key)
	}
	return created, nil
}

// Categories lists entry categories. Requires an open session so the CLI
// prompts for the master password before showing vault structure.
func (s *vaultService) Categories(ctx context.Context) ([]models.Category, error) {
	if !s.guard.CheckValidity(ctx) {
		return nil, common.ErrAuthRequired
	}
	return s.client.ListCategories(ctx)
}
