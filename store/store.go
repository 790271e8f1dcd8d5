// Package store defines the shared atomic key store the concurrency core
// runs against. The cache client, the distributed lock, the id generator and
// the order pipeline all hold only this interface; the Redis implementation
// lives in store/redis, an in-process one in store/memory.
//
// Several correctness properties of the callers hold only if SetNX, Incr and
// CompareAndDel are indivisible operations. Implementations MUST provide that
// (Redis does natively, or via a server-side script); a best-effort
// read-modify-write is not an acceptable substitute.
package store

import (
	"context"
	"time"
)

// Store is a string-keyed byte store with TTLs plus the atomic primitives
// the core depends on. Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores value only if key is absent. Returns true when the
	// write happened. The whole check-and-set is one atomic step.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Del removes a key (best-effort; deleting a missing key is not an error).
	Del(ctx context.Context, key string) error

	// Incr atomically increments the integer at key (missing => 0) and
	// returns the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// HSet sets one field of the hash at key.
	HSet(ctx context.Context, key, field, value string) error

	// HGet returns (value, true, nil) when the hash field exists.
	HGet(ctx context.Context, key, field string) (string, bool, error)

	// CompareAndDel deletes key only if its current value equals expect,
	// in one atomic step. Returns true when the key was deleted.
	// A separate read followed by a delete is a race, not an implementation.
	CompareAndDel(ctx context.Context, key, expect string) (bool, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
