// Package kv provides the persistent key-value store the offline core
// keeps its state in. Values are JSON strings serialized by the caller;
// keys use fixed prefixes per record family (no schema migration exists,
// so a prefix change orphans old records).
package kv

import "context"

// Store is the persistence contract consumed by the queue, sync log,
// summary store and cache bookkeeping.
type Store interface {
	// Get returns the value for key. The second return is false when the
	// key does not exist.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any existing value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteMany removes every key in keys.
	DeleteMany(ctx context.Context, keys []string) error

	// ListKeys returns all keys with the given prefix in insertion order.
	// An empty prefix lists every key.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}
