package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/sparkleapp/sparkle-cli/internal/client/api"
	"github.com/sparkleapp/sparkle-cli/internal/client/models"
	"github.com/sparkleapp/sparkle-cli/internal/client/upload"
	"github.com/sparkleapp/sparkle-cli/internal/common"
)

// Upload submits a local file and waits for OCR to finish. The user is
// prompted for the file type and an optional category; waiting can take a
// while, so progress is reported as it happens.
func (a *App) Upload(ctx context.Context, path string) error {
	fileType, err := getSimpleText(a.reader, "File type (document/image)", os.Stdout)
	if err != nil {
		return err
	}
	if fileType == "" {
		fileType = "document"
	}
	category, err := getSimpleText(a.reader, "Category id (optional)", os.Stdout)
	if err != nil {
		return err
	}

	log.Printf("Uploading %s ...", path)

	outcome, err := a.files.Upload(ctx, path, fileType, category)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			log.Printf("Cannot upload: %s", err.Error())
		} else {
			log.Printf("Upload error: %s", err.Error())
		}
		return err
	}

	a.printOutcome(outcome)
	return nil
}

func (a *App) printOutcome(outcome *upload.Outcome) {
	switch outcome.Status {
	case upload.StatusCompleted:
		fmt.Println("OCR completed:")
		fmt.Println(outcome.Text)
	case upload.StatusFailed:
		fmt.Printf("OCR failed: %s\n", outcome.Reason)
	case upload.StatusTimedOut:
		fmt.Printf("OCR still running after %d checks; use 'ocr <id>' later\n", outcome.Attempts)
	default:
		fmt.Printf("OCR status: %s\n", outcome.Status)
	}
}

// ListFiles prints the uploaded files with their OCR state.
func (a *App) ListFiles(ctx context.Context) error {
	files, err := a.files.List(ctx, models.FileFilter{})
	if err != nil {
		reportVaultErr(err)
		return err
	}

	if len(files) == 0 {
		fmt.Println("No files")
		return nil
	}
	for _, f := range files {
		fmt.Printf("%s  %-30s  %-10s  %s\n", f.ID, f.Name, f.FileType, f.OCRStatus)
	}
	return nil
}

// ShowFile prints one file's stored details.
func (a *App) ShowFile(ctx context.Context, fileID string) error {
	fi, err := a.files.Details(ctx, fileID)
	if err != nil {
		reportVaultErr(err)
		return err
	}

	fmt.Printf("id:         %s\n", fi.ID)
	fmt.Printf("name:       %s\n", fi.Name)
	fmt.Printf("type:       %s\n", fi.FileType)
	if fi.Category != "" {
		fmt.Printf("category:   %s\n", fi.Category)
	}
	if fi.SizeBytes > 0 {
		fmt.Printf("size:       %d bytes\n", fi.SizeBytes)
	}
	fmt.Printf("ocr status: %s\n", fi.OCRStatus)
	if fi.URL != "" {
		fmt.Printf("url:        %s\n", fi.URL)
	}
	return nil
}

// ShowOCR prints the OCR text for an uploaded file, or its current status
// when processing has not completed.
func (a *App) ShowOCR(ctx context.Context, fileID string) error {
	poll, err := a.files.OCRText(ctx, fileID)
	if err != nil {
		reportVaultErr(err)
		return err
	}

	switch poll.Status {
	case api.OCRCompleted:
		fmt.Println(poll.Text)
	case api.OCRFailed:
		fmt.Printf("OCR failed: %s\n", poll.Reason)
	default:
		fmt.Printf("OCR status: %s\n", poll.Status)
	}
	return nil
}

// Reprocess queues a fresh OCR run for a file.
func (a *App) Reprocess(ctx context.Context, fileID string) error {
	if err := a.files.Reprocess(ctx, fileID); err != nil {
		reportVaultErr(err)
		return err
	}
	fmt.Println("OCR queued")
	return nil
}
