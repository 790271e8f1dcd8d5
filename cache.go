package niche

import (
	"context"
	"fmt"
	"sync"
	"time"

	c "github.com/Unrealaaaaaa/Niche-review/codec"
	"github.com/Unrealaaaaaa/Niche-review/internal/wire"
	"github.com/Unrealaaaaaa/Niche-review/lock"
	"github.com/Unrealaaaaaa/Niche-review/store"
)

type client[V any] struct {
	ns    string
	store store.Store
	codec c.Codec[V]
	log   Logger

	ttl         time.Duration
	negativeTTL time.Duration
	logicalTTL  time.Duration

	lockTTL      time.Duration
	lockBackoff  time.Duration
	lockAttempts int

	rebuilds  chan rebuild[V]
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newClient[V any](opts Options[V]) (*client[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("niche: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("niche: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("niche: namespace is required")
	}

	c := &client[V]{
		ns:    opts.Namespace,
		store: opts.Store,
		codec: opts.Codec,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.ttl = coalesce[time.Duration](opts.TTL, 30*time.Minute)
	c.negativeTTL = coalesce[time.Duration](opts.NegativeTTL, 2*time.Minute)
	c.logicalTTL = coalesce[time.Duration](opts.LogicalTTL, 30*time.Minute)
	c.lockTTL = coalesce[time.Duration](opts.LockTTL, 10*time.Second)
	c.lockBackoff = coalesce[time.Duration](opts.LockBackoff, 50*time.Millisecond)
	c.lockAttempts = coalesce[int](opts.LockAttempts, 20)

	// absence markers must never outlive the values they stand in for
	if c.negativeTTL > c.ttl {
		c.negativeTTL = c.ttl
	}

	workers := coalesce[int](opts.RebuildWorkers, 4)
	c.rebuilds = make(chan rebuild[V], coalesce[int](opts.RebuildQueue, 64))
	c.stopCh = make(chan struct{})
	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go c.rebuildWorker()
	}
	return c, nil
}

func (c *client[V]) entryKey(key string) string { return c.ns + ":" + key }
func (c *client[V]) lockName(key string) string { return c.ns + ":" + key }

type readState int

const (
	readMiss readState = iota
	readHit
	readNegative
)

// read resolves one storage key into hit/negative/miss. Corrupt or
// undecodable entries are deleted and reported as a miss so the next load
// repopulates them.
func (c *client[V]) read(ctx context.Context, storageKey string) (V, readState, error) {
	var zero V
	raw, ok, err := c.store.Get(ctx, storageKey)
	if err != nil {
		return zero, readMiss, err
	}
	if !ok {
		return zero, readMiss, nil
	}
	ent, err := wire.Decode(raw)
	if err != nil {
		_ = c.store.Del(ctx, storageKey) // self-heal corrupt
		return zero, readMiss, nil
	}
	if ent.Negative() {
		return zero, readNegative, nil
	}
	v, err := c.codec.Decode(ent.Payload)
	if err != nil {
		_ = c.store.Del(ctx, storageKey)
		c.log.Warn("cache value decode failed", Fields{"key": storageKey, "err": err})
		return zero, readMiss, nil
	}
	return v, readHit, nil
}

// Get is the pass-through strategy: hit or negative marker answers from the
// cache; a true miss loads from the source and repopulates, writing an
// absence marker with the short negative TTL when the source has nothing.
// Deliberately lock-free - concurrent cold misses each reach the source.
func (c *client[V]) Get(ctx context.Context, key string, load LoadFunc[V]) (V, bool, error) {
	var zero V
	v, st, err := c.read(ctx, c.entryKey(key))
	if err != nil {
		return zero, false, err
	}
	switch st {
	case readHit:
		return v, true, nil
	case readNegative:
		return zero, false, nil
	}
	return c.loadAndFill(ctx, key, load)
}

func (c *client[V]) loadAndFill(ctx context.Context, key string, load LoadFunc[V]) (V, bool, error) {
	var zero V
	v, found, err := load(ctx, key)
	if err != nil {
		return zero, false, err
	}
	k := c.entryKey(key)
	if !found {
		if err := c.store.Set(ctx, k, wire.EncodePlain(nil), c.negativeTTL); err != nil {
			c.log.Warn("negative cache write failed", Fields{"key": k, "err": err})
		}
		return zero, false, nil
	}
	payload, err := c.codec.Encode(v)
	if err != nil {
		return zero, false, err
	}
	if err := c.store.Set(ctx, k, wire.EncodePlain(payload), c.ttl); err != nil {
		// the caller has the value; a failed fill only costs the next reader
		c.log.Warn("cache fill failed", Fields{"key": k, "err": err})
	}
	return v, true, nil
}

// GetWithMutex guarantees at most one concurrent source rebuild per key.
// Losers of the lock race sleep and retry the whole read from the top (the
// winner usually repopulated the entry by then). The loop is bounded; when
// the budget runs out the caller gets ErrContended instead of a stack of
// recursive retries.
func (c *client[V]) GetWithMutex(ctx context.Context, key string, load LoadFunc[V]) (V, bool, error) {
	var zero V
	for attempt := 0; attempt < c.lockAttempts; attempt++ {
		v, st, err := c.read(ctx, c.entryKey(key))
		if err != nil {
			return zero, false, err
		}
		switch st {
		case readHit:
			return v, true, nil
		case readNegative:
			return zero, false, nil
		}

		l := lock.New(c.store, c.lockName(key))
		ok, err := l.TryLock(ctx, c.lockTTL)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			select {
			case <-ctx.Done():
				return zero, false, ctx.Err()
			case <-time.After(c.lockBackoff):
			}
			continue
		}

		return func() (V, bool, error) {
			defer func() { _ = l.Unlock(ctx) }()

			// another caller may have rebuilt the entry between our miss
			// and the lock grant
			v, st, err := c.read(ctx, c.entryKey(key))
			if err != nil {
				return zero, false, err
			}
			switch st {
			case readHit:
				return v, true, nil
			case readNegative:
				return zero, false, nil
			}
			return c.loadAndFill(ctx, key, load)
		}()
	}
	return zero, false, ErrContended
}

func (c *client[V]) Set(ctx context.Context, key string, value V) error {
	payload, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.entryKey(key), wire.EncodePlain(payload), c.ttl)
}

func (c *client[V]) Invalidate(ctx context.Context, key string) error {
	return c.store.Del(ctx, c.entryKey(key))
}

func (c *client[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
