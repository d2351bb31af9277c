package api

import (
	"context"
	"time"

	"github.com/sparkleapp/sparkle-cli/internal/client/models"
)

// OCR status values as reported by the server.
const (
	OCRNotStarted = "not_started"
	OCRPending    = "pending"
	OCRProcessing = "processing"
	OCRCompleted  = "completed"
	OCRFailed     = "failed"
)

// UploadRequest describes one file submission. Data takes precedence over
// Path when both are set; Name and MimeType are the declared values sent to
// the server, not re-detected there.
type UploadRequest struct {
	Path       string
	Data       []byte
	Name       string
	MimeType   string
	FileType   string // "document" or "image"
	CategoryID string
}

// SubmitResult is the immediate outcome of an upload. OCRStatus may already
// be terminal when the server processed the document synchronously.
type SubmitResult struct {
	File          *models.FileInfo
	OCRStatus     string
	OCRText       string
	FailureReason string
}

// OCRPoll is one status query result for a previously uploaded file.
type OCRPoll struct {
	Status string
	Text   string
	Reason string
	JobID  string
}

// Client is the remote API surface consumed by the services layer.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	// Login obtains a token pair and stores it on the client. The callback
	// registered with OnTokensChanged fires for both login and refresh.
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	SetTokens(access, refresh string)
	OnTokensChanged(fn func(access, refresh string))

	MasterPasswordStatus(ctx context.Context) (bool, error)
	SetupMasterPassword(ctx context.Context, newSecret, confirmSecret []byte) (created bool, err error)
	ChangeMasterPassword(ctx context.Context, current, newSecret, confirmSecret []byte) error
	// VerifyMasterPassword returns the session expiry granted by the server.
	// Failures are common.ErrVerificationFailed (rejected secret) or
	// common.ErrUnavailable (transport), never retried here.
	VerifyMasterPassword(ctx context.Context, secret []byte) (time.Time, error)

	ListEntries(ctx context.Context, filter models.EntryFilter, masterSecret []byte) ([]models.PasswordEntry, error)
	CreateEntry(ctx context.Context, entry *models.PasswordEntry, masterSecret []byte) (*models.PasswordEntry, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	UploadFile(ctx context.Context, req *UploadRequest) (*SubmitResult, error)
	ListFiles(ctx context.Context, filter models.FileFilter) ([]models.FileInfo, error)
	FileDetails(ctx context.Context, fileID string) (*models.FileInfo, error)
	OCRStatus(ctx context.Context, fileID string) (*OCRPoll, error)
	StartOCR(ctx context.Context, fileID string) error
}
