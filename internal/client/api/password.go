package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sparkleapp/sparkle-cli/internal/client/models"
	"github.com/sparkleapp/sparkle-cli/internal/common"
)

const (
	masterPasswordPath       = "/password_management/api/master-password/"
	masterPasswordStatusPath = "/password_management/api/master-password/status/"
	masterPasswordVerifyPath = "/password_management/api/master-password/verify/"
	entriesPath              = "/password_management/api/mobile/entries/"
	createEntryPath          = "/password_management/api/create-password-entry/"
	categoriesPath           = "/password_management/api/categories/"
)

// MasterPasswordStatus reports whether a master password has been set up for
// the authenticated account.
func (c *RESTClient) MasterPasswordStatus(ctx context.Context) (bool, error) {
	var out struct {
		IsSet bool `json:"is_set"`
	}
	if err := c.getJSON(ctx, masterPasswordStatusPath, &out, nil); err != nil {
		return false, err
	}
	return out.IsSet, nil
}

// SetupMasterPassword creates or replaces the master password. The server
// answers with created=true on first-time setup.
func (c *RESTClient) SetupMasterPassword(ctx context.Context, newSecret, confirmSecret []byte) (bool, error) {
	if len(newSecret) == 0 {
		return false, fmt.Errorf("%w: empty master password", common.ErrInvalidInput)
	}
	if !bytes.Equal(newSecret, confirmSecret) {
		return false, fmt.Errorf("%w: passwords do not match", common.ErrInvalidInput)
	}

	in := map[string]string{
		"new_password":     string(newSecret),
		"confirm_password": string(confirmSecret),
	}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Created bool   `json:"created"`
	}
	if err := c.postJSON(ctx, masterPasswordPath, in, &out, nil); err != nil {
		return false, err
	}
	return out.Created, nil
}

// ChangeMasterPassword replaces the master password, proving knowledge of the
// current one.
func (c *RESTClient) ChangeMasterPassword(ctx context.Context, current, newSecret, confirmSecret []byte) error {
	if len(current) == 0 || len(newSecret) == 0 {
		return fmt.Errorf("%w: empty master password", common.ErrInvalidInput)
	}
	if !bytes.Equal(newSecret, confirmSecret) {
		return fmt.Errorf("%w: passwords do not match", common.ErrInvalidInput)
	}

	in := map[string]string{
		"current_password": string(current),
		"new_password":     string(newSecret),
		"confirm_password": string(confirmSecret),
	}
	return c.postJSON(ctx, masterPasswordPath, in, nil, nil)
}

// VerifyMasterPassword submits the candidate secret to the remote verifier
// and returns the session expiry it granted. A 400 means the secret was
// rejected; any transport failure keeps its common.ErrUnavailable identity.
// Each call may count against server-side rate limits, so callers must not
// retry silently.
func (c *RESTClient) VerifyMasterPassword(ctx context.Context, secret []byte) (time.Time, error) {
	if len(secret) == 0 {
		return time.Time{}, fmt.Errorf("%w: empty master password", common.ErrInvalidInput)
	}

	in := map[string]string{"master_password": string(secret)}
	var out struct {
		Success    bool   `json:"success"`
		Message    string `json:"message"`
		ValidUntil int64  `json:"valid_until"`
	}
	if err := c.postJSON(ctx, masterPasswordVerifyPath, in, &out, nil); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusBadRequest {
			return time.Time{}, fmt.Errorf("%w: %s", common.ErrVerificationFailed, se.Message)
		}
		return time.Time{}, err
	}
	if !out.Success || out.ValidUntil <= 0 {
		return time.Time{}, &ParseError{Field: "valid_until", Reason: "missing"}
	}
	return time.UnixMilli(out.ValidUntil), nil
}

// ListEntries fetches vault entries. The master secret travels in a header
// so the server can decrypt stored passwords for this request only.
func (c *RESTClient) ListEntries(ctx context.Context, filter models.EntryFilter, masterSecret []byte) ([]models.PasswordEntry, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Type != "" {
		q.Set("type", filter.Type)
	}
	path := entriesPath
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var payloads []entryPayload
	if err := c.getJSON(ctx, path, &payloads, masterSecret); err != nil {
		return nil, err
	}

	entries := make([]models.PasswordEntry, 0, len(payloads))
	for i := range payloads {
		entries = append(entries, payloads[i].normalize())
	}
	return entries, nil
}

// CreateEntry stores a new vault entry.
func (c *RESTClient) CreateEntry(ctx context.Context, entry *models.PasswordEntry, masterSecret []byte) (*models.PasswordEntry, error) {
	if entry == nil || entry.Title == "" || entry.Password == "" {
		return nil, fmt.Errorf("%w: entry needs a title and a password", common.ErrInvalidInput)
	}

	in := map[string]any{
		"title":      entry.Title,
		"username":   entry.Username,
		"password":   entry.Password,
		"url":        entry.URL,
		"notes":      entry.Notes,
		"category":   entry.Category,
		"entry_type": entry.EntryType,
	}
	var payload entryPayload
	if err := c.postJSON(ctx, createEntryPath, in, &payload, masterSecret); err != nil {
		return nil, err
	}
	created := payload.normalize()
	if created.ID == "" {
		// server acknowledged without echoing the record
		created = *entry
	}
	return &created, nil
}

// ListCategories fetches the vault category list.
func (c *RESTClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	var payloads []categoryPayload
	if err := c.getJSON(ctx, categoriesPath, &payloads, nil); err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(payloads))
	for _, p := range payloads {
		categories = append(categories, models.Category{ID: p.ID.String(), Name: p.Name})
	}
	return categories, nil
}
