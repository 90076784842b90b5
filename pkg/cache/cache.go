// Package cache stores build artifacts between runs.
//
// The only artifact cached today is minified output: minifying the same
// compiled module twice (same content hash, same backend) returns the
// stored result instead of calling the minifier again. Keys are built by a
// [Keyer] so backends never see raw inputs.
//
// Three backends implement [Cache]:
//   - [FileCache] for the CLI, under the user cache directory
//   - [RedisCache] for shared CI caches
//   - [NullCache] when caching is disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
