package services

import (
	"context"
	"time"

	"github.com/sparkleapp/sparkle-cli/internal/client/api"
	"github.com/sparkleapp/sparkle-cli/internal/client/models"
)

// fakeClient implements api.Client for service unit tests.
type fakeClient struct {
	CloseErr error
	PingErr  error

	LoginErr      error
	LastLoginMail string
	LastLoginPass []byte
	LogoutErr     error
	LogoutCalls   int

	tokensFn    func(access, refresh string)
	SetAccess   string
	SetRefresh  string
	SetCalls    int
	FireOnLogin bool // when set, Login fires the token hook like the real client

	StatusSet bool
	StatusErr error

	SetupCreated bool
	SetupErr     error
	LastSetupNew []byte

	ChangeErr   error
	LastChange  [][]byte
	ChangeCalls int

	VerifyUntil time.Time
	VerifyErr   error
	VerifyCalls int
	LastSecret  []byte

	EntriesRet  []models.PasswordEntry
	EntriesErr  error
	LastFilter  models.EntryFilter
	LastListSec []byte

	CreateRet *models.PasswordEntry
	CreateErr error
	LastAdded *models.PasswordEntry

	CategoriesRet []models.Category
	CategoriesErr error

	UploadRet  *api.SubmitResult
	UploadErr  error
	LastUpload *api.UploadRequest

	FilesRet []models.FileInfo
	FilesErr error

	DetailsRet *models.FileInfo
	DetailsErr error

	OCRRet     *api.OCRPoll
	OCRErr     error
	LastOCRID  string
	StartErr   error
	StartCalls int
}

var _ api.Client = (*fakeClient)(nil)

func (f *fakeClient) Close() error                   { return f.CloseErr }
func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

func (f *fakeClient) Login(ctx context.Context, email string, password []byte) error {
	f.LastLoginMail = email
	f.LastLoginPass = append([]byte(nil), password...)
	if f.LoginErr != nil {
		return f.LoginErr
	}
	if f.FireOnLogin && f.tokensFn != nil {
		f.tokensFn("access-1", "refresh-1")
	}
	return nil
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.LogoutCalls++
	if f.tokensFn != nil {
		f.tokensFn("", "")
	}
	return f.LogoutErr
}

func (f *fakeClient) SetTokens(access, refresh string) {
	f.SetAccess, f.SetRefresh = access, refresh
	f.SetCalls++
}

func (f *fakeClient) OnTokensChanged(fn func(access, refresh string)) { f.tokensFn = fn }

func (f *fakeClient) MasterPasswordStatus(ctx context.Context) (bool, error) {
	return f.StatusSet, f.StatusErr
}

func (f *fakeClient) SetupMasterPassword(ctx context.Context, newSecret, confirmSecret []byte) (bool, error) {
	f.LastSetupNew = append([]byte(nil), newSecret...)
	return f.SetupCreated, f.SetupErr
}

func (f *fakeClient) ChangeMasterPassword(ctx context.Context, current, newSecret, confirmSecret []byte) error {
	f.ChangeCalls++
	f.LastChange = [][]byte{current, newSecret, confirmSecret}
	return f.ChangeErr
}

func (f *fakeClient) VerifyMasterPassword(ctx context.Context, secret []byte) (time.Time, error) {
	f.VerifyCalls++
	f.LastSecret = append([]byte(nil), secret...)
	return f.VerifyUntil, f.VerifyErr
}

func (f *fakeClient) ListEntries(ctx context.Context, filter models.EntryFilter, masterSecret []byte) ([]models.PasswordEntry, error) {
	f.LastFilter = filter
	f.LastListSec = append([]byte(nil), masterSecret...)
	return f.EntriesRet, f.EntriesErr
}

func (f *fakeClient) CreateEntry(ctx context.Context, entry *models.PasswordEntry, masterSecret []byte) (*models.PasswordEntry, error) {
	f.LastAdded = entry
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if f.CreateRet != nil {
		return f.CreateRet, nil
	}
	return entry, nil
}

func (f *fakeClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	return f.CategoriesRet, f.CategoriesErr
}

func (f *fakeClient) UploadFile(ctx context.Context, req *api.UploadRequest) (*api.SubmitResult, error) {
	f.LastUpload = req
	return f.UploadRet, f.UploadErr
}

func (f *fakeClient) ListFiles(ctx context.Context, filter models.FileFilter) ([]models.FileInfo, error) {
	return f.FilesRet, f.FilesErr
}

func (f *fakeClient) FileDetails(ctx context.Context, fileID string) (*models.FileInfo, error) {
	return f.DetailsRet, f.DetailsErr
}

func (f *fakeClient) OCRStatus(ctx context.Context, fileID string) (*api.OCRPoll, error) {
	f.LastOCRID = fileID
	return f.OCRRet, f.OCRErr
}

func (f *fakeClient) StartOCR(ctx context.Context, fileID string) error {
	f.StartCalls++
	return f.StartErr
}
