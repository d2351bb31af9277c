package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"

	"github.com/sparkleapp/sparkle-cli/internal/client/models"
	"github.com/sparkleapp/sparkle-cli/internal/common"
)

const filesPath = "/file_management/api/mobile/files/"

// UploadFile submits a file for storage and OCR. The server may answer with
// an already-terminal OCR status when the document was processed inline.
func (c *RESTClient) UploadFile(ctx context.Context, req *UploadRequest) (*SubmitResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil upload request", common.ErrInvalidInput)
	}

	data := req.Data
	if data == nil {
		var err error
		if data, err = os.ReadFile(req.Path); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
		}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.Name))
	hdr.Set("Content-Type", req.MimeType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.WriteField("file_type", req.FileType); err != nil {
		return nil, err
	}
	if req.CategoryID != "" {
		if err := mw.WriteField("category_id", req.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	body, _, err := c.send(ctx, &reqSpec{
		method:      http.MethodPost,
		path:        filesPath,
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	raw, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		File      *filePayload `json:"file"`
		OCRStatus string       `json:"ocr_status"`
		OCRText   string       `json:"ocr_text"`
		Error     string       `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &ParseError{Field: "data", Reason: err.Error()}
	}
	if payload.File == nil {
		return nil, &ParseError{Field: "data.file", Reason: "missing"}
	}

	info, err := payload.File.normalize()
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{File: info, OCRText: payload.OCRText, FailureReason: payload.Error}
	switch {
	case payload.OCRStatus != "":
		result.OCRStatus = payload.OCRStatus
	case info.OCRStatus != "":
		result.OCRStatus = info.OCRStatus
	default:
		result.OCRStatus = OCRPending
	}
	return result, nil
}

// ListFiles fetches stored files matching the filter.
func (c *RESTClient) ListFiles(ctx context.Context, filter models.FileFilter) ([]models.FileInfo, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.FileType != "" {
		q.Set("file_type", filter.FileType)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	path := filesPath
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	body, _, err := c.send(ctx, &reqSpec{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	data, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Files []filePayload `json:"files"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &ParseError{Field: "data.files", Reason: err.Error()}
	}

	files := make([]models.FileInfo, 0, len(payload.Files))
	for i := range payload.Files {
		info, err := payload.Files[i].normalize()
		if err != nil {
			return nil, err
		}
		files = append(files, *info)
	}
	return files, nil
}

// FileDetails fetches one stored file, including its OCR status.
func (c *RESTClient) FileDetails(ctx context.Context, fileID string) (*models.FileInfo, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, fmt.Errorf("%w: empty file id", common.ErrInvalidInput)
	}

	body, _, err := c.send(ctx, &reqSpec{method: http.MethodGet, path: filesPath + fileID + "/"})
	if err != nil {
		return nil, err
	}
	data, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	var payload filePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &ParseError{Field: "data", Reason: err.Error()}
	}
	return payload.normalize()
}

// OCRStatus queries processing state for a previously uploaded file. It only
// reads server state and is safe to call repeatedly.
func (c *RESTClient) OCRStatus(ctx context.Context, fileID string) (*OCRPoll, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, fmt.Errorf("%w: empty file id", common.ErrInvalidInput)
	}

	var payload ocrPayload
	if err := c.getJSON(ctx, filesPath+fileID+"/ocr/", &payload, nil); err != nil {
		return nil, err
	}
	return payload.normalize()
}

// StartOCR asks the server to (re)process a file.
func (c *RESTClient) StartOCR(ctx context.Context, fileID string) error {
	if strings.TrimSpace(fileID) == "" {
		return fmt.Errorf("%w: empty file id", common.ErrInvalidInput)
	}
	return c.postJSON(ctx, filesPath+fileID+"/process-ocr/", nil, nil, nil)
}
