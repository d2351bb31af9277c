package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sparkleapp/sparkle-cli/internal/client/api"
	"github.com/sparkleapp/sparkle-cli/internal/client/models"
	"github.com/sparkleapp/sparkle-cli/internal/client/upload"
	"github.com/sparkleapp/sparkle-cli/internal/common"
	"github.com/sparkleapp/sparkle-cli/internal/filex"
	"github.com/sparkleapp/sparkle-cli/internal/logging"
)

// FileService drives the document upload and OCR workflow.
type FileService interface {
	// Upload submits a local file and waits for OCR to finish, time out or
	// fail, per the configured polling policy.
	Upload(ctx context.Context, path, fileType, categoryID string) (*upload.Outcome, error)
	// Submit uploads without waiting; the returned task can be polled later.
	Submit(ctx context.Context, path, fileType, categoryID string) (*upload.Task, error)
	Await(ctx context.Context, fileID string) (*upload.Outcome, error)

	List(ctx context.Context, filter models.FileFilter) ([]models.FileInfo, error)
	Details(ctx context.Context, fileID string) (*models.FileInfo, error)
	OCRText(ctx context.Context, fileID string) (*api.OCRPoll, error)
	Reprocess(ctx context.Context, fileID string) error
}

type fileService struct {
	client   api.Client
	workflow *upload.Workflow
	policy   upload.Policy
	log      logging.Logger
}

// NewFileService constructs a FileService. A zero policy falls back to the
// workflow defaults.
func NewFileService(client api.Client, workflow *upload.Workflow, policy upload.Policy, log logging.Logger) FileService {
	if policy.MaxAttempts <= 0 {
		policy = upload.DefaultPolicy()
	}
	return &fileService{client: client, workflow: workflow, policy: policy, log: log}
}

// fileRef builds the workflow reference for a local path, detecting the MIME
// type from the extension. An unsupported or empty path surfaces as
// common.ErrInvalidInput from the workflow's validation.
func (s *fileService) fileRef(path string) upload.FileRef {
	return upload.FileRef{
		Path:     path,
		Name:     filepath.Base(path),
		MimeType: filex.DetectMimeType(path),
	}
}

func (s *fileService) Upload(ctx context.Context, path, fileType, categoryID string) (*upload.Outcome, error) {
	if fileType == "" {
		return nil, fmt.Errorf("%w: missing file type", common.ErrInvalidInput)
	}
	meta := upload.Metadata{FileType: fileType, CategoryID: categoryID}
	return s.workflow.Run(ctx, s.fileRef(path), meta, s.policy)
}

func (s *fileService) Submit(ctx context.Context, path, fileType, categoryID string) (*upload.Task, error) {
	if fileType == "" {
		return nil, fmt.Errorf("%w: missing file type", common.ErrInvalidInput)
	}
	meta := upload.Metadata{FileType: fileType, CategoryID: categoryID}
	return s.workflow.Submit(ctx, s.fileRef(path), meta)
}

// Await resumes waiting for OCR on an already uploaded file.
func (s *fileService) Await(ctx context.Context, fileID string) (*upload.Outcome, error) {
	return s.workflow.AwaitCompletion(ctx, fileID, s.policy)
}

func (s *fileService) List(ctx context.Context, filter models.FileFilter) ([]models.FileInfo, error) {
	return s.client.ListFiles(ctx, filter)
}

func (s *fileService) Details(ctx context.Context, fileID string) (*models.FileInfo, error) {
	return s.client.FileDetails(ctx, fileID)
}

// OCRText returns the current OCR state for a file, including extracted
// text when processing has completed.
func (s *fileService) OCRText(ctx context.Context, fileID string) (*api.OCRPoll, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: missing file id", common.ErrInvalidInput)
	}
	return s.client.OCRStatus(ctx, fileID)
}

// Reprocess queues a fresh OCR run for an existing file.
func (s *fileService) Reprocess(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("%w: missing file id", common.ErrInvalidInput)
	}
	return s.client.StartOCR(ctx, fileID)
}
