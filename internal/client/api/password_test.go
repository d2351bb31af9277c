package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sparkleapp/sparkle-cli/internal/client/models"
	"github.com/sparkleapp/sparkle-cli/internal/common"
)

func TestVerifyMasterPassword_Success(t *testing.T) {
	until := time.Now().Add(15 * time.Minute).UnixMilli()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/password_management/api/master-password/verify/", r.URL.Path)

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "master", in["master_password"])

		writeJSON(t, w, http.StatusOK, map[string]any{
			"success":     true,
			"message":     "ok",
			"valid_until": until,
		})
	}))

	got, err := c.VerifyMasterPassword(context.Background(), []byte("master"))
	require.NoError(t, err)
	require.Equal(t, time.UnixMilli(until), got)
}

func TestVerifyMasterPassword_Rejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"message": "invalid master password"})
	}))

	_, err := c.VerifyMasterPassword(context.Background(), []byte("wrong"))
	require.ErrorIs(t, err, common.ErrVerificationFailed)
}

func TestVerifyMasterPassword_EmptySecretLocalReject(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := c.VerifyMasterPassword(context.Background(), nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)
	require.False(t, called)
}

func TestVerifyMasterPassword_MissingExpiry(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	}))

	_, err := c.VerifyMasterPassword(context.Background(), []byte("master"))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "valid_until", pe.Field)
}

func TestVerifyMasterPassword_TransportKeepsIdentity(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.VerifyMasterPassword(context.Background(), []byte("master"))
	require.ErrorIs(t, err, common.ErrUnavailable)
	require.NotErrorIs(t, err, common.ErrVerificationFailed)
}

func TestMasterPasswordStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/password_management/api/master-password/status/", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]bool{"is_set": true})
	}))

	set, err := c.MasterPasswordStatus(context.Background())
	require.NoError(t, err)
	require.True(t, set)
}

func TestSetupMasterPassword_LocalValidation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server must not be reached")
	}))

	_, err := c.SetupMasterPassword(context.Background(), nil, nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = c.SetupMasterPassword(context.Background(), []byte("one"), []byte("two"))
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSetupMasterPassword_Created(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/password_management/api/master-password/", r.URL.Path)

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "new", in["new_password"])
		require.Equal(t, "new", in["confirm_password"])

		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "created": true})
	}))

	created, err := c.SetupMasterPassword(context.Background(), []byte("new"), []byte("new"))
	require.NoError(t, err)
	require.True(t, created)
}

func TestChangeMasterPassword_SendsCurrent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "old", in["current_password"])
		require.Equal(t, "new", in["new_password"])
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	}))

	err := c.ChangeMasterPassword(context.Background(), []byte("old"), []byte("new"), []byte("new"))
	require.NoError(t, err)
}

func TestListEntries_SecretHeaderAndFilter(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/password_management/api/mobile/entries/", r.URL.Path)
		require.Equal(t, "master", r.Header.Get(MasterPasswordHeaderName))
		require.Equal(t, "personal", r.URL.Query().Get("category"))

		writeJSON(t, w, http.StatusOK, []map[string]any{
			{"id": 7, "title": "mail", "username": "me", "password": "pw", "category": "personal"},
		})
	}))

	got, err := c.ListEntries(context.Background(), models.EntryFilter{Category: "personal"}, []byte("master"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "7", got[0].ID)
	require.Equal(t, "mail", got[0].Title)
}

func TestCreateEntry_RequiresTitleAndPassword(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server must not be reached")
	}))

	_, err := c.CreateEntry(context.Background(), &models.PasswordEntry{Title: "x"}, nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCreateEntry_EchoesServerRecord(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/password_management/api/create-password-entry/", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 12, "title": "mail", "password": "pw"})
	}))

	created, err := c.CreateEntry(context.Background(), &models.PasswordEntry{Title: "mail", Password: "pw"}, []byte("master"))
	require.NoError(t, err)
	require.Equal(t, "12", created.ID)
}

func TestListCategories(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/password_management/api/categories/", r.URL.Path)
		writeJSON(t, w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "personal"},
			{"id": 2, "name": "work"},
		})
	}))

	cats, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	require.Equal(t, "1", cats[0].ID)
	require.Equal(t, "work", cats[1].Name)
}
