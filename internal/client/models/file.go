package models

import "time"

// FileInfo describes a stored file as reported by the server. URL is the
// normalized download location (the wire format has several historical field
// names for it; the API layer maps them to this single field).
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FileType   string    `json:"file_type"`
	MimeType   string    `json:"mime_type,omitempty"`
	SizeBytes  int64     `json:"file_size,omitempty"`
	URL        string    `json:"url,omitempty"`
	Category   string    `json:"category,omitempty"`
	OCRStatus  string    `json:"ocr_status,omitempty"`
	UploadedAt time.Time `json:"uploaded_at,omitempty"`
}

// FileFilter narrows a file listing.
type FileFilter struct {
	Category string
	FileType string
	Search   string
}
