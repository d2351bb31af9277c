package api

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sparkleapp/sparkle-cli/internal/client/models"
)

// responses are bounded; nothing legitimate approaches this
const maxResponseBytes = 16 << 20

func readAllLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxResponseBytes))
}

// envelope is the {"success","data","error"} wrapper used by the mobile file
// endpoints.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{Field: "envelope", Reason: err.Error()}
	}
	if !env.Success {
		if env.Error == "" {
			return nil, &ParseError{Field: "success", Reason: "false without error message"}
		}
		return nil, &StatusError{Code: 200, Message: env.Error}
	}
	if len(env.Data) == 0 {
		return nil, &ParseError{Field: "data", Reason: "missing"}
	}
	return env.Data, nil
}

// errorMessage extracts the human-readable message from an error body,
// whichever of the known field names it uses.
func errorMessage(body []byte) string {
	var m struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	switch {
	case m.Error != "":
		return m.Error
	case m.Detail != "":
		return m.Detail
	default:
		return m.Message
	}
}

// filePayload covers every shape the server has historically used for a
// stored file, including the three names seen for the download URL. It is
// normalized exactly once, here.
type filePayload struct {
	ID               json.Number `json:"id"`
	FileType         string      `json:"file_type"`
	OriginalFilename string      `json:"original_filename"`
	FileSize         int64       `json:"file_size"`
	FileURL          string      `json:"file_url"`
	FileURLCamel     string      `json:"fileUrl"`
	URL              string      `json:"url"`
	UploadDate       string      `json:"upload_date"`
	OCRStatus        string      `json:"ocr_status"`
	Category         *struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	} `json:"category"`
}

func (p *filePayload) normalize() (*models.FileInfo, error) {
	if p.ID.String() == "" {
		return nil, &ParseError{Field: "file.id", Reason: "missing"}
	}
	info := &models.FileInfo{
		ID:        p.ID.String(),
		Name:      p.OriginalFilename,
		FileType:  p.FileType,
		SizeBytes: p.FileSize,
		OCRStatus: p.OCRStatus,
	}
	switch {
	case p.FileURL != "":
		info.URL = p.FileURL
	case p.FileURLCamel != "":
		info.URL = p.FileURLCamel
	default:
		info.URL = p.URL
	}
	if p.Category != nil {
		info.Category = p.Category.Name
	}
	if p.UploadDate != "" {
		if ts, err := time.Parse(time.RFC3339, p.UploadDate); err == nil {
			info.UploadedAt = ts
		}
	}
	return info, nil
}

// ocrPayload tolerates both field spellings for the text and failure reason;
// normalization picks one.
type ocrPayload struct {
	Status      string `json:"status"`
	TextContent string `json:"text_content"`
	Text        string `json:"text"`
	ErrorReason string `json:"error_reason"`
	Error       string `json:"error"`
	JobID       string `json:"job_id"`
}

func (p *ocrPayload) normalize() (*OCRPoll, error) {
	if p.Status == "" {
		return nil, &ParseError{Field: "ocr.status", Reason: "missing"}
	}
	poll := &OCRPoll{Status: p.Status, JobID: p.JobID}
	if p.TextContent != "" {
		poll.Text = p.TextContent
	} else {
		poll.Text = p.Text
	}
	if p.ErrorReason != "" {
		poll.Reason = p.ErrorReason
	} else {
		poll.Reason = p.Error
	}
	return poll, nil
}

// entryPayload maps the numeric ids the vault endpoints return onto the
// string ids used client-side.
type entryPayload struct {
	ID        json.Number `json:"id"`
	Title     string      `json:"title"`
	Username  string      `json:"username"`
	Password  string      `json:"password"`
	URL       string      `json:"url"`
	Notes     string      `json:"notes"`
	Category  string      `json:"category"`
	EntryType string      `json:"entry_type"`
	Favorite  bool        `json:"is_favorite"`
	UpdatedAt string      `json:"updated_at"`
}

func (p *entryPayload) normalize() models.PasswordEntry {
	e := models.PasswordEntry{
		ID:        p.ID.String(),
		Title:     p.Title,
		Username:  p.Username,
		Password:  p.Password,
		URL:       p.URL,
		Notes:     p.Notes,
		Category:  p.Category,
		EntryType: p.EntryType,
		Favorite:  p.Favorite,
	}
	if p.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, p.UpdatedAt); err == nil {
			e.UpdatedAt = ts
		}
	}
	return e
}

type categoryPayload struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}
