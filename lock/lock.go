// Package lock provides cross-process mutual exclusion on top of the shared
// atomic store. A lock is a lease: the store key self-expires after the TTL
// passed to TryLock, so a crashed holder cannot wedge the resource forever.
//
// Locks are non-reentrant and non-fair: there is no depth counting and no
// ordering guarantee between waiters.
package lock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Unrealaaaaaa/Niche-review/store"
)

const keyPrefix = "lock:"

// Locker is the mutual-exclusion contract consumed by the cache client and
// the order pipeline.
type Locker interface {
	// TryLock attempts a single acquisition with the given lease.
	// It never blocks or retries; false means someone else holds the lock.
	TryLock(ctx context.Context, lease time.Duration) (bool, error)

	// Unlock releases the lock only if this instance still holds it.
	// Releasing after the lease expired and another holder took over is a
	// no-op, never a theft of the new holder's lock.
	Unlock(ctx context.Context) error
}

// Lock guards one named resource. Each acquisition stores a fresh UUID as
// the holder identity; release is an atomic compare-holder-and-delete.
type Lock struct {
	store store.Store
	key   string
	token string
}

var _ Locker = (*Lock)(nil)

func New(s store.Store, resource string) *Lock {
	return &Lock{store: s, key: keyPrefix + resource}
}

func (l *Lock) TryLock(ctx context.Context, lease time.Duration) (bool, error) {
	// Fresh token per attempt: the holder identity must be unique to this
	// acquisition, not to the process, or a stale Unlock could match.
	token := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, token, lease)
	if err != nil || !ok {
		return false, err
	}
	l.token = token
	return true, nil
}

func (l *Lock) Unlock(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	_, err := l.store.CompareAndDel(ctx, l.key, l.token)
	l.token = ""
	return err
}
