// Package repository persists collection progress as integer values keyed by
// string, e.g. "collection_12_level" -> 3.
package repository

import "context"

// Store provides durable key/value access to progress counters.
type Store interface {
	// Save writes value under key, replacing any previous value.
	Save(ctx context.Context, key string, value int) error

	// Load returns the value under key, or def when the key was never saved.
	Load(ctx context.Context, key string, def int) (int, error)

	// Count returns the number of keys stored.
	Count(ctx context.Context) (int, error)

	// Close releases the store. Calls after Close fail with ErrClosed.
	Close() error
}
