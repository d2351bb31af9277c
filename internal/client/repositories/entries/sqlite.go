package entries

import (
	"context"
	"fmt"

	"github.com/sparkleapp/sparkle-cli/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, e *CachedEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (id, payload, nonce) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, nonce = excluded.nonce
	`, e.ID, e.Payload, e.Nonce)
	if err != nil {
		return fmt.Errorf("failed to insert entry[%s]: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*CachedEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, payload, nonce FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var result []*CachedEntry
	for rows.Next() {
		e := &CachedEntry{}
		if err := rows.Scan(&e.ID, &e.Payload, &e.Nonce); err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry rows: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM entries`)
	if err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	return nil
}
