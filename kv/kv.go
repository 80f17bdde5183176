package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist. Callers must
// not confuse it with a connectivity failure: any other error means the
// store could not be reached and the fact is unknown.
var ErrNotFound = errors.New("kv: key not found")

// KeyValueStore represents an interface for a TTL-capable key-value storage
// system shared by all process instances
type KeyValueStore interface {
	// Set stores a key-value pair, overwriting any previous value,
	// with the given expiration duration
	Set(ctx context.Context, key, value string, exp time.Duration) error
	// Get retrieves the value associated with the given key, or ErrNotFound
	Get(ctx context.Context, key string) (string, error)
	// Del removes the key-value pair; deleting an absent key is not an error
	Del(ctx context.Context, key string) error
	// Exists reports whether the key is present
	Exists(ctx context.Context, key string) (bool, error)
}
