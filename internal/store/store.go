// Package store defines the persistent key-value boundary used by the cache
// and quota layers, with memory, file, Redis, and SQLite backends.
//
// Values are opaque strings; all typed serialization happens above this
// boundary so backends can be swapped without touching cache or quota logic.
package store

import "context"

// Store is a string-keyed persistent store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys returns all keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
