package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sparkleapp/sparkle-cli/internal/client/api"
	"github.com/sparkleapp/sparkle-cli/internal/client/models"
	"github.com/sparkleapp/sparkle-cli/internal/client/upload"
	"github.com/sparkleapp/sparkle-cli/internal/common"
)

func newFileFixture(t *testing.T, policy upload.Policy) (*fakeClient, FileService) {
	t.Helper()
	fc := &fakeClient{}
	wf := upload.NewWorkflow(fc, testLogger())
	return fc, NewFileService(fc, wf, policy, testLogger())
}

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o600))
	return path
}

func TestFileService_UploadDetectsMimeAndName(t *testing.T) {
	ctx := context.Background()
	fc, svc := newFileFixture(t, upload.Policy{MaxAttempts: 2, Interval: 0, CountTransportErrors: true})
	path := writeTempPDF(t)

	fc.UploadRet = &api.SubmitResult{
		File:      &models.FileInfo{ID: "f1", Name: "doc.pdf"},
		OCRStatus: api.OCRCompleted,
		OCRText:   "hello",
	}

	out, err := svc.Upload(ctx, path, "document", "cat-1")
	require.NoError(t, err)
	require.Equal(t, upload.StatusCompleted, out.Status)
	require.Equal(t, "hello", out.Text)

	require.Equal(t, "application/pdf", fc.LastUpload.MimeType)
	require.Equal(t, "doc.pdf", fc.LastUpload.Name)
	require.Equal(t, "document", fc.LastUpload.FileType)
	require.Equal(t, "cat-1", fc.LastUpload.CategoryID)
}

func TestFileService_UploadMissingFileType(t *testing.T) {
	ctx := context.Background()
	fc, svc := newFileFixture(t, upload.DefaultPolicy())

	_, err := svc.Upload(ctx, writeTempPDF(t), "", "")
	require.ErrorIs(t, err, common.ErrInvalidInput)
	require.Nil(t, fc.LastUpload)
}

func TestFileService_UploadUnknownExtensionStillSubmits(t *testing.T) {
	// Unrecognized extensions fall back to the generic MIME type rather
	// than being rejected locally.
	ctx := context.Background()
	fc, svc := newFileFixture(t, upload.Policy{MaxAttempts: 1})
	path := filepath.Join(t.TempDir(), "blob.xyz")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))

	fc.UploadRet = &api.SubmitResult{
		File:          &models.FileInfo{ID: "f1"},
		OCRStatus:     api.OCRFailed,
		FailureReason: "unsupported format",
	}

	out, err := svc.Upload(ctx, path, "document", "")
	require.NoError(t, err)
	require.Equal(t, upload.StatusFailed, out.Status)
	require.Equal(t, "application/octet-stream", fc.LastUpload.MimeType)
}

func TestFileService_SubmitThenAwait(t *testing.T) {
	ctx := context.Background()
	fc, svc := newFileFixture(t, upload.Policy{MaxAttempts: 3, Interval: 0, CountTransportErrors: true})
	path := writeTempPDF(t)

	fc.UploadRet = &api.SubmitResult{
		File:      &models.FileInfo{ID: "f7"},
		OCRStatus: api.OCRPending,
	}

	task, err := svc.Submit(ctx, path, "document", "")
	require.NoError(t, err)
	require.Equal(t, "f7", task.ID)
	require.Equal(t, upload.StatusPending, task.Status)

	fc.OCRRet = &api.OCRPoll{Status: api.OCRCompleted, Text: "scanned text"}

	out, err := svc.Await(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, upload.StatusCompleted, out.Status)
	require.Equal(t, "scanned text", out.Text)
	require.Equal(t, "f7", fc.LastOCRID)
}

func TestFileService_ListAndDetails(t *testing.T) {
	ctx := context.Background()
	fc, svc := newFileFixture(t, upload.DefaultPolicy())

	fc.FilesRet = []models.FileInfo{{ID: "f1", Name: "doc.pdf"}}
	files, err := svc.List(ctx, models.FileFilter{FileType: "document"})
	require.NoError(t, err)
	require.Len(t, files, 1)

	fc.DetailsRet = &models.FileInfo{ID: "f1", Name: "doc.pdf", OCRStatus: api.OCRCompleted}
	fi, err := svc.Details(ctx, "f1")
	require.NoError(t, err)
	require.Equal(t, api.OCRCompleted, fi.OCRStatus)
}

func TestFileService_OCRTextValidation(t *testing.T) {
	ctx := context.Background()
	fc, svc := newFileFixture(t, upload.DefaultPolicy())

	_, err := svc.OCRText(ctx, "")
	require.ErrorIs(t, err, common.ErrInvalidInput)

	fc.OCRRet = &api.OCRPoll{Status: api.OCRProcessing}
	poll, err := svc.OCRText(ctx, "f1")
	require.NoError(t, err)
	require.Equal(t, api.OCRProcessing, poll.Status)
}

func TestFileService_Reprocess(t *testing.T) {
	ctx := context.Background()
	fc, svc := newFileFixture(t, upload.DefaultPolicy())

	require.ErrorIs(t, svc.Reprocess(ctx, ""), common.ErrInvalidInput)

	require.NoError(t, svc.Reprocess(ctx, "f1"))
	require.Equal(t, 1, fc.StartCalls)
}
