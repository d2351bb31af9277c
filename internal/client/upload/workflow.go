// Package upload implements the submit-and-poll workflow for OCR processing:
// a file is submitted once, then its status is polled under a bounded attempt
// budget until the server reports a terminal outcome or the budget runs out.
package upload

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sparkleapp/sparkle-cli/internal/client/api"
	"github.com/sparkleapp/sparkle-cli/internal/client/models"
	"github.com/sparkleapp/sparkle-cli/internal/common"
	"github.com/sparkleapp/sparkle-cli/internal/filex"
	"github.com/sparkleapp/sparkle-cli/internal/logging"
)

// Status of an upload task. Completed, Failed and TimedOut are terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	// StatusTimedOut means the attempt budget ran out while the job was
	// still processing. It is not an error: the job may yet finish
	// server-side, the caller should offer to check back later.
	StatusTimedOut Status = "timed_out"
)

// Terminal reports whether no further transition can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusTimedOut
}

// Default polling policy, matching the product's observed behavior: up to
// 30 status checks, 10 seconds apart (5 minutes for a slow document).
const (
	DefaultMaxAttempts  = 30
	DefaultPollInterval = 10 * time.Second
)

// Policy bounds AwaitCompletion. CountTransportErrors decides whether a
// failed poll request consumes an attempt (true, the default — a flaky
// network cannot stretch the budget) or is retried for free (false — the
// budget then only counts polls the server actually answered, and the loop
// is bounded by the context alone under a persistent outage).
type Policy struct {
	MaxAttempts          int
	Interval             time.Duration
	CountTransportErrors bool
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:          DefaultMaxAttempts,
		Interval:             DefaultPollInterval,
		CountTransportErrors: true,
	}
}

// FileRef identifies a local file to submit, with its declared name and MIME
// type. Name defaults to the path's base name.
type FileRef struct {
	Path     string
	Name     string
	MimeType string
}

// Metadata accompanies a submission.
type Metadata struct {
	FileType   string // "document" or "image"
	CategoryID string
}

// Task is the client-side handle for one submitted file.
type Task struct {
	ID     string // server-assigned file id, used for polling
	Status Status
	File   *models.FileInfo
	Text   string // present when the server completed OCR inline
	Reason string // present when the server failed the job inline
}

// Outcome is the terminal result of AwaitCompletion.
type Outcome struct {
	Status   Status
	Text     string
	Reason   string
	Attempts int
}

// Backend is the remote surface the workflow needs; *api.RESTClient
// satisfies it.
type Backend interface {
	UploadFile(ctx context.Context, req *api.UploadRequest) (*api.SubmitResult, error)
	OCRStatus(ctx context.Context, fileID string) (*api.OCRPoll, error)
}

type Workflow struct {
	backend Backend
	log     logging.Logger
}

func NewWorkflow(backend Backend, log logging.Logger) *Workflow {
	return &Workflow{backend: backend, log: log}
}

// Submit validates the file reference locally and sends it for processing.
// Validation failures are reported as common.ErrInvalidInput before any
// network call. The returned task may already be terminal when the server
// processed the document inline.
func (w *Workflow) Submit(ctx context.Context, ref FileRef, meta Metadata) (*Task, error) {
	if ref.MimeType == "" {
		return nil, fmt.Errorf("%w: missing MIME type", common.ErrInvalidInput)
	}
	if ref.Path == "" {
		return nil, fmt.Errorf("%w: missing file path", common.ErrInvalidInput)
	}
	if meta.FileType == "" {
		return nil, fmt.Errorf("%w: missing file type", common.ErrInvalidInput)
	}
	if _, err := filex.CheckReadable(ref.Path); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	name := ref.Name
	if name == "" {
		name = filepath.Base(ref.Path)
	}

	result, err := w.backend.UploadFile(ctx, &api.UploadRequest{
		Path:       ref.Path,
		Name:       name,
		MimeType:   ref.MimeType,
		FileType:   meta.FileType,
		CategoryID: meta.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	task := &Task{
		ID:     result.File.ID,
		Status: fromWire(result.OCRStatus),
		File:   result.File,
		Text:   result.OCRText,
		Reason: result.FailureReason,
	}
	w.log.Info(ctx, "file submitted", "file_id", task.ID, "name", name, "status", task.Status)
	return task, nil
}

// Poll queries current status once. It only reads server state and is safe
// to call repeatedly.
func (w *Workflow) Poll(ctx context.Context, taskID string) (*api.OCRPoll, error) {
	return w.backend.OCRStatus(ctx, taskID)
}

// AwaitCompletion polls until the job reaches Completed or Failed, the
// attempt budget is exhausted (TimedOut), or ctx is cancelled. Cancellation
// stops polling only: the API has no job-cancel endpoint, so the server may
// keep processing an abandoned task.
func (w *Workflow) AwaitCompletion(ctx context.Context, taskID string, p Policy) (*Outcome, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: missing task id", common.ErrInvalidInput)
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Interval < 0 {
		p.Interval = 0
	}

	attempts := 0
	for attempts < p.MaxAttempts {
		attempts++

		poll, err := w.backend.OCRStatus(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			w.log.Warn(ctx, "status poll failed", "task_id", taskID, "attempt", attempts, "error", err)
			if !p.CountTransportErrors {
				attempts--
			}
		} else {
			switch fromWire(poll.Status) {
			case StatusCompleted:
				return &Outcome{Status: StatusCompleted, Text: poll.Text, Attempts: attempts}, nil
			case StatusFailed:
				return &Outcome{Status: StatusFailed, Reason: poll.Reason, Attempts: attempts}, nil
			}
		}

		if attempts >= p.MaxAttempts {
			break
		}
		if err := sleep(ctx, p.Interval); err != nil {
			return nil, err
		}
	}

	w.log.Info(ctx, "attempt budget exhausted", "task_id", taskID, "attempts", attempts)
	return &Outcome{Status: StatusTimedOut, Attempts: attempts}, nil
}

// Run submits the file and, unless the server answered terminally, awaits
// completion under the policy.
func (w *Workflow) Run(ctx context.Context, ref FileRef, meta Metadata, p Policy) (*Outcome, error) {
	task, err := w.Submit(ctx, ref, meta)
	if err != nil {
		return nil, err
	}
	switch task.Status {
	case StatusCompleted:
		return &Outcome{Status: StatusCompleted, Text: task.Text}, nil
	case StatusFailed:
		return &Outcome{Status: StatusFailed, Reason: task.Reason}, nil
	}
	return w.AwaitCompletion(ctx, task.ID, p)
}

func fromWire(status string) Status {
	switch status {
	case api.OCRCompleted:
		return StatusCompleted
	case api.OCRFailed:
		return StatusFailed
	case api.OCRProcessing:
		return StatusProcessing
	default:
		// not_started and unknown values poll as pending
		return StatusPending
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
