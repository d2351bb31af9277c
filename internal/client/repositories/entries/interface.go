// Package entries caches vault entries locally so the list survives the
// server being unreachable. Payloads are stored AES-GCM encrypted; the
// repository never sees plaintext.
package entries

import "context"

// CachedEntry is one encrypted vault record.
type CachedEntry struct {
	ID      string
	Payload []byte // AES-GCM ciphertext of the JSON-encoded entry
	Nonce   []byte
}

type Repository interface {
	Insert(ctx context.Context, e *CachedEntry) error
	List(ctx context.Context) ([]*CachedEntry, error)
	DeleteAll(ctx context.Context) error
}
