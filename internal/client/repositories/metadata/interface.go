// Package metadata persists the client's scalar state: the bearer token
// pair, the master-password session expiry, the cache salt and the last
// logged-in username. One key, one value.
package metadata

import "context"

// Keys used by the services layer. Kept here so every writer and reader
// agrees on the spelling.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUsername     = "username"
	KeyCacheSalt    = "cache_salt"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
