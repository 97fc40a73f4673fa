// Package cache provides the caching layer in front of the layout engine.
//
// Layouts are pure functions of their parameters, so a computed layout or a
// rendered artifact can be stored under a content-derived key and reused by
// any later request with the same inputs.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [MemoryCache]: in-process map with TTL, for a single server instance
//   - [FileCache]: hash-sharded JSON files, for the CLI
//   - [RedisCache]: shared cache for multi-instance deployments
//
// # Keys
//
// A [Keyer] derives keys from layout parameters and artifact options. Keys
// embed [KeyVersion] so that changes to the layout algorithm never serve
// stale results.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads with an optional TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored data and whether the key was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per entry kind.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)
