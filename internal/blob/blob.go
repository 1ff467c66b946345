// Package blob abstracts the key-value blob store backing the ledger.
// Each key holds one JSON-encoded collection; the ledger store is the
// only writer.
package blob

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get when the key has never been written.
var ErrNotExist = errors.New("blob: key does not exist")

// Store is a key-value blob store.
type Store interface {
	// Get returns the bytes stored at key, or ErrNotExist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data at key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
