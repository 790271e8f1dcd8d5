package niche

import (
	"context"
	"time"

	c "github.com/Unrealaaaaaa/Niche-review/codec"
	"github.com/Unrealaaaaaa/Niche-review/store"
)

// LoadFunc fetches a value from the backing source on a cache miss.
// found=false means the source has no record for the key; that answer is
// negatively cached so repeated lookups stop reaching the source.
type LoadFunc[V any] func(ctx context.Context, key string) (v V, found bool, err error)

// Client is the read-through cache API. V is the caller's value type;
// serialization is handled by a pluggable Codec[V].
//
// The three Get variants trade consistency against availability:
//
//   - Get: lock-free pass-through. Misses hit the source directly, so a
//     stampede of cold reads becomes a stampede of loads. Cheap and correct
//     once warm; negative caching blocks lookups for nonexistent keys.
//   - GetWithMutex: at most one concurrent rebuild per key. Waiters retry
//     with bounded backoff and pay latency for consistency.
//   - GetWithLogicalExpiry: never blocks and never misses on a warmed key.
//     Expired reads return the stale value and kick a background refresh.
//     Cold keys must be seeded with Warm first.
type Client[V any] interface {
	// Get is the pass-through strategy.
	Get(ctx context.Context, key string, load LoadFunc[V]) (V, bool, error)

	// GetWithMutex is the mutex-guarded rebuild strategy. Returns
	// ErrContended when the rebuild lock stayed busy past the retry budget.
	GetWithMutex(ctx context.Context, key string, load LoadFunc[V]) (V, bool, error)

	// GetWithLogicalExpiry is the stale-while-revalidate strategy.
	// ok=false means the key was never warmed.
	GetWithLogicalExpiry(ctx context.Context, key string, load LoadFunc[V]) (V, bool, error)

	// Set writes a value with the positive TTL (pass-through keyspace).
	Set(ctx context.Context, key string, value V) error

	// Warm writes a value wrapped with a fresh logical expiry and no
	// physical TTL. Used to seed keys served by GetWithLogicalExpiry.
	Warm(ctx context.Context, key string, value V) error

	// Invalidate removes the cached entry. Callers that own a durable
	// record update it first, then invalidate.
	Invalidate(ctx context.Context, key string) error

	// Close stops the rebuild workers and waits for in-flight rebuilds.
	Close(ctx context.Context) error
}

// Options tune the cache client. Namespace, Store and Codec are required;
// everything else has defaults.
type Options[V any] struct {
	Namespace string // key namespace, e.g. "shop"
	Store     store.Store
	Codec     c.Codec[V]

	Logger Logger // nil => NopLogger

	TTL         time.Duration // positive entries; 0 => 30m
	NegativeTTL time.Duration // confirmed-absent markers; 0 => 2m, always capped at TTL
	LogicalTTL  time.Duration // freshness lease for warmed entries; 0 => 30m

	LockTTL      time.Duration // rebuild lock lease; 0 => 10s
	LockBackoff  time.Duration // mutex-strategy sleep between attempts; 0 => 50ms
	LockAttempts int           // mutex-strategy retry budget; 0 => 20

	RebuildWorkers int // logical-expiry rebuild pool size; 0 => 4
	RebuildQueue   int // pending rebuild capacity; 0 => 64
}

func New[V any](opts Options[V]) (Client[V], error) {
	return newClient[V](opts)
}
