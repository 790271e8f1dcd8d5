package niche

import (
	"context"
	"time"

	"github.com/Unrealaaaaaa/Niche-review/internal/wire"
	"github.com/Unrealaaaaaa/Niche-review/lock"
)

type rebuild[V any] struct {
	key  string
	load LoadFunc[V]
}

// GetWithLogicalExpiry serves warmed entries without ever blocking. A fresh
// wrapper returns immediately; an expired one returns the stale value and
// hands the refresh to the background pool. ok=false only for keys that
// were never warmed - cold keys must be seeded with Warm.
func (c *client[V]) GetWithLogicalExpiry(ctx context.Context, key string, load LoadFunc[V]) (V, bool, error) {
	var zero V
	k := c.entryKey(key)
	raw, ok, err := c.store.Get(ctx, k)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	ent, err := wire.Decode(raw)
	if err != nil {
		_ = c.store.Del(ctx, k) // self-heal corrupt
		return zero, false, nil
	}
	v, err := c.codec.Decode(ent.Payload)
	if err != nil {
		_ = c.store.Del(ctx, k)
		c.log.Warn("cache value decode failed", Fields{"key": k, "err": err})
		return zero, false, nil
	}
	if ent.Fresh(time.Now()) {
		return v, true, nil
	}

	// stale: the caller gets the old value now, a worker refreshes it
	c.enqueueRebuild(key, load)
	return v, true, nil
}

// Warm writes value wrapped with a fresh logical expiry and no physical TTL,
// so the entry can go stale but never vanish.
func (c *client[V]) Warm(ctx context.Context, key string, value V) error {
	payload, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	env := wire.EncodeLogical(time.Now().Add(c.logicalTTL), payload)
	return c.store.Set(ctx, c.entryKey(key), env, 0)
}

func (c *client[V]) enqueueRebuild(key string, load LoadFunc[V]) {
	select {
	case c.rebuilds <- rebuild[V]{key: key, load: load}:
	default:
		// pool saturated; the next stale read enqueues again
		c.log.Debug("rebuild queue full", Fields{"key": key})
	}
}

func (c *client[V]) rebuildWorker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopCh:
			return
		case r := <-c.rebuilds:
			c.refresh(r)
		}
	}
}

// refresh is the lock-guarded rebuild: only one worker per key wins, the
// winner double-checks that the entry is still stale before touching the
// source, and the lock is released no matter how the rebuild went. All
// failures end up in the log - a bad key must never take a worker down.
func (c *client[V]) refresh(r rebuild[V]) {
	ctx := context.Background()
	l := lock.New(c.store, c.lockName(r.key))
	ok, err := l.TryLock(ctx, c.lockTTL)
	if err != nil {
		c.log.Warn("rebuild lock error", Fields{"key": r.key, "err": err})
		return
	}
	if !ok {
		return // another worker is already on it
	}
	defer func() { _ = l.Unlock(ctx) }()

	// the previous lock holder may have refreshed the entry already
	raw, found, err := c.store.Get(ctx, c.entryKey(r.key))
	if err != nil {
		c.log.Warn("rebuild re-check failed", Fields{"key": r.key, "err": err})
		return
	}
	if found {
		if ent, err := wire.Decode(raw); err == nil && ent.Fresh(time.Now()) {
			return
		}
	}

	v, loaded, err := r.load(ctx, r.key)
	if err != nil {
		c.log.Error("rebuild source load failed", Fields{"key": r.key, "err": err})
		return
	}
	if !loaded {
		// source lost the record; keep serving the stale copy rather than
		// turning a warmed key into a miss
		c.log.Warn("rebuild found no source record", Fields{"key": r.key})
		return
	}
	if err := c.Warm(ctx, r.key, v); err != nil {
		c.log.Error("rebuild cache write failed", Fields{"key": r.key, "err": err})
	}
}
