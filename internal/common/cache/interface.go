package cache

import (
	"context"
	"time"
)

// Cache is the Redis-backed key-value surface the repositories and
// services share: plain keys for catalog snapshots, hashes for user
// preferences, and a lock for the sync job.
type Cache interface {
	BasicOps
	HashOps
	LockOps

	// Ping verifies the cache connection is alive.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// BasicOps covers plain key-value operations.
type BasicOps interface {
	// Get retrieves the value for key. A missing key returns "" with
	// no error.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a key-value pair. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Del deletes one or more keys.
	Del(ctx context.Context, keys ...string) error
}

// HashOps covers the hash operations the preference store needs.
type HashOps interface {
	// HGetAll returns all fields of the hash at key. A missing key
	// returns an empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HMSet sets multiple fields of the hash at key.
	HMSet(ctx context.Context, key string, fields map[string]interface{}) error
}

// LockOps covers the distributed lock guarding catalog syncs.
type LockOps interface {
	// TryLock attempts to take the lock. Returns false without error
	// when another holder has it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Unlock releases the lock.
	Unlock(ctx context.Context, key string) error
}
