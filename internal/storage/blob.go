// Package storage implements the persistence boundary: a key-value store of
// serialized snapshots with in-memory, JSON file and SQLite backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultKey is the key the application snapshot is stored under.
const DefaultKey = "credit-card-tracker-v1"

// ErrNotFound is returned by Get when no blob is stored under the key.
var ErrNotFound = errors.New("snapshot not found")

// ErrInvalidKey is returned for empty keys or keys containing path separators.
var ErrInvalidKey = errors.New("invalid snapshot key")

// BlobStore reads and writes one serialized snapshot per key. Set replaces the
// stored value as a whole.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
