package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/sparkleapp/sparkle-cli/internal/client/models"
	"github.com/sparkleapp/sparkle-cli/internal/client/repositories/entries"
	"github.com/sparkleapp/sparkle-cli/internal/client/repositories/metadata"
	"github.com/sparkleapp/sparkle-cli/internal/client/session"
	"github.com/sparkleapp/sparkle-cli/internal/common"
)

func newVaultFixture(t *testing.T) (*fakeClient, VaultService, entries.Repository) {
	t.Helper()
	db := setupDB(t)
	metaRepo := metadata.NewSQLiteRepository(db)
	entryRepo := entries.NewSQLiteRepository(db)
	fc := &fakeClient{}
	guard := session.NewGuard(metaRepo, fc, testLogger())
	svc := NewVaultService(fc, guard, entryRepo, metaRepo, testLogger())
	return fc, svc, entryRepo
}

func unlock(t *testing.T, fc *fakeClient, svc VaultService) {
	t.Helper()
	fc.VerifyUntil = time.Now().Add(15 * time.Minute)
	require.NoError(t, svc.Unlock(context.Background(), []byte("master")))
}

func TestVaultService_UnlockOpensSession(t *testing.T) {
	ctx := context.Background()
	fc, svc, _ := newVaultFixture(t)

	require.False(t, svc.Unlocked(ctx))

	unlock(t, fc, svc)

	require.True(t, svc.Unlocked(ctx))
	require.Equal(t, []byte("master"), fc.LastSecret)
}

func TestVaultService_UnlockRejectedSecret(t *testing.T) {
	ctx := context.Background()
	fc, svc, _ := newVaultFixture(t)
	fc.VerifyErr = common.ErrVerificationFailed

	err := svc.Unlock(ctx, []byte("wrong"))
	require.ErrorIs(t, err, common.ErrVerificationFailed)
	require.False(t, svc.Unlocked(ctx))
}

func TestVaultService_LockIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fc, svc, _ := newVaultFixture(t)
	unlock(t, fc, svc)

	require.NoError(t, svc.Lock(ctx))
	require.False(t, svc.Unlocked(ctx))
	require.NoError(t, svc.Lock(ctx))
}

func TestVaultService_ListRequiresOpenSession(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newVaultFixture(t)

	_, err := svc.List(ctx, models.EntryFilter{})
	require.ErrorIs(t, err, common.ErrAuthRequired)
}

func TestVaultService_ListSendsSecretAndFilter(t *testing.T) {
	ctx := context.Background()
	fc, svc, _ := newVaultFixture(t)
	unlock(t, fc, svc)

	fc.EntriesRet = []models.PasswordEntry{
		{ID: "1", Title: "mail", Password: "p", Category: "personal"},
	}

	got, err := svc.List(ctx, models.EntryFilter{Category: "personal"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "personal", fc.LastFilter.Category)
	require.Equal(t, []byte("master"), fc.LastListSec)
}

func TestVaultService_ListFallsBackToCacheWhenOffline(t *testing.T) {
	ctx := context.Background()
	fc, svc, entryRepo := newVaultFixture(t)
	unlock(t, fc, svc)

	// Seed the cache through an online listing first.
	fc.EntriesRet = []models.PasswordEntry{
		{ID: "1", Title: "mail", Password: "p", Category: "personal"},
		{ID: "2", Title: "bank", Password: "q", Category: "finance"},
	}
	_, err := svc.List(ctx, models.EntryFilter{})
	require.NoError(t, err)

	cached, err := entryRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 2)

	// Server goes away; the filter is applied locally.
	fc.EntriesErr = common.ErrUnavailable

	got, err := svc.List(ctx, models.EntryFilter{Category: "finance"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "bank", got[0].Title)
}

func TestVaultService_CachePayloadNotPlaintext(t *testing.T) {
	ctx := context.Background()
	fc, svc, entryRepo := newVaultFixture(t)
	unlock(t, fc, svc)

	fc.EntriesRet = []models.PasswordEntry{{ID: "1", Title: "mail", Password: "hunter2"}}
	_, err := svc.List(ctx, models.EntryFilter{})
	require.NoError(t, err)

	cached, err := entryRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	require.NotContains(t, string(cached[0].Payload), "hunter2")
}

func TestVaultService_AddGatedAndCached(t *testing.T) {
	ctx := context.Background()
	fc, svc, entryRepo := newVaultFixture(t)

	_, err := svc.Add(ctx, &models.PasswordEntry{Title: "x", Password: "y"})
	require.ErrorIs(t, err, common.ErrAuthRequired)

	unlock(t, fc, svc)
	fc.CreateRet = &models.PasswordEntry{ID: "42", Title: "x", Password: "y"}

	created, err := svc.Add(ctx, &models.PasswordEntry{Title: "x", Password: "y"})
	require.NoError(t, err)
	require.Equal(t, "42", created.ID)

	cached, err := entryRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	require.Equal(t, "42", cached[0].ID)
}

func TestVaultService_SetupOpensSession(t *testing.T) {
	ctx := context.Background()
	fc, svc, _ := newVaultFixture(t)
	fc.SetupCreated = true
	fc.VerifyUntil = time.Now().Add(15 * time.Minute)

	err := svc.SetupMasterPassword(ctx, []byte("new"), []byte("new"))
	require.NoError(t, err)
	require.True(t, svc.Unlocked(ctx))
	require.Equal(t, 1, fc.VerifyCalls)
	require.Equal(t, []byte("new"), fc.LastSecret)
}

func TestVaultService_ChangeReopensWithNewSecret(t *testing.T) {
	ctx := context.Background()
	fc, svc, _ := newVaultFixture(t)
	unlock(t, fc, svc)

	fc.VerifyUntil = time.Now().Add(15 * time.Minute)
	err := svc.ChangeMasterPassword(ctx, []byte("master"), []byte("next"), []byte("next"))
	require.NoError(t, err)

	require.Equal(t, 1, fc.ChangeCalls)
	require.True(t, svc.Unlocked(ctx))
	require.Equal(t, []byte("next"), fc.LastSecret)
}

func TestVaultService_ChangeFailureKeepsOldSession(t *testing.T) {
	ctx := context.Background()
	fc, svc, _ := newVaultFixture(t)
	unlock(t, fc, svc)

	fc.ChangeErr = common.ErrVerificationFailed
	err := svc.ChangeMasterPassword(ctx, []byte("bad"), []byte("next"), []byte("next"))
	require.ErrorIs(t, err, common.ErrVerificationFailed)
	require.True(t, svc.Unlocked(ctx))
}

func TestVaultService_CategoriesGated(t *testing.T) {
	ctx := context.Background()
	fc, svc, _ := newVaultFixture(t)

	_, err := svc.Categories(ctx)
	require.ErrorIs(t, err, common.ErrAuthRequired)

	unlock(t, fc, svc)
	fc.CategoriesRet = []models.Category{{ID: "c1", Name: "personal"}}

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
}

func TestVaultService_MasterPasswordSet(t *testing.T) {
	ctx := context.Background()
	fc, svc, _ := newVaultFixture(t)
	fc.StatusSet = true

	set, err := svc.MasterPasswordSet(ctx)
	require.NoError(t, err)
	require.True(t, set)
}
