// Package models defines the client-side shapes of vault entries, categories
// and stored files.
package models

import "time"

// PasswordEntry is one record in the password vault. Password is plaintext
// only in transit and in the caller's hands; the offline cache stores the
// whole entry encrypted.
type PasswordEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	URL       string    `json:"url,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Category  string    `json:"category,omitempty"`
	EntryType string    `json:"entry_type,omitempty"`
	Favorite  bool      `json:"is_favorite,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Category groups vault entries.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EntryFilter narrows a vault entry listing.
type EntryFilter struct {
	Category string
	Type     string
}
