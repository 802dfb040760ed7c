// Package metadata is the key/value table of the CLI's local database. The
// login session (tokens and user name) lives here between invocations.
package metadata

import (
	"context"
)

// Repository reads and writes raw values by key.
type Repository interface {
	// Get returns (nil, nil) for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put upserts every entry of values in one statement.
	Put(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
}
