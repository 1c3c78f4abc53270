package repository

import "context"

// Repository defines the interface for the device-local key-value store.
// Values are opaque blobs written as a whole; there is no partial update.
type Repository interface {
	// Get retrieves the value stored under key. The second return value is
	// false when the slot has never been written.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put overwrites the slot under key with the given value
	Put(ctx context.Context, key string, value string) error

	// Close releases the underlying store
	Close() error
}
