package lock

import (
	"context"
	"testing"
	"time"

	"github.com/Unrealaaaaaa/Niche-review/store/memory"
)

func TestTryLockMutualExclusion(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	l1 := New(s, "res")
	l2 := New(s, "res")

	ok, err := l1.TryLock(ctx, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first TryLock: ok=%v err=%v", ok, err)
	}
	ok, err = l2.TryLock(ctx, time.Minute)
	if err != nil || ok {
		t.Fatalf("second TryLock should fail while held: ok=%v err=%v", ok, err)
	}

	if err := l1.Unlock(ctx); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	ok, err = l2.TryLock(ctx, time.Minute)
	if err != nil || !ok {
		t.Fatalf("TryLock after release: ok=%v err=%v", ok, err)
	}
}

func TestUnlockWithoutLockIsNoop(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	other := New(s, "res")
	if ok, _ := other.TryLock(ctx, time.Minute); !ok {
		t.Fatalf("setup lock failed")
	}

	// a Lock that never acquired must not touch the held key
	if err := New(s, "res").Unlock(ctx); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if ok, _ := New(s, "res").TryLock(ctx, time.Minute); ok {
		t.Fatalf("held lock was released by a stranger")
	}
}

// A holder whose lease expired and was re-acquired by someone else must not
// remove the new holder's lock on release.
func TestStaleUnlockDoesNotStealLock(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	stale := New(s, "res")
	if ok, _ := stale.TryLock(ctx, 10*time.Millisecond); !ok {
		t.Fatalf("stale TryLock failed")
	}
	time.Sleep(20 * time.Millisecond) // lease runs out

	fresh := New(s, "res")
	if ok, _ := fresh.TryLock(ctx, time.Minute); !ok {
		t.Fatalf("fresh TryLock after expiry failed")
	}

	if err := stale.Unlock(ctx); err != nil {
		t.Fatalf("stale Unlock: %v", err)
	}

	// fresh holder must still hold the lock
	if ok, _ := New(s, "res").TryLock(ctx, time.Minute); ok {
		t.Fatalf("stale Unlock removed the new holder's lock")
	}
	if err := fresh.Unlock(ctx); err != nil {
		t.Fatalf("fresh Unlock: %v", err)
	}
	if ok, _ := New(s, "res").TryLock(ctx, time.Minute); !ok {
		t.Fatalf("lock should be free after the real holder released")
	}
}

func TestReacquireMintsNewToken(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	l := New(s, "res")
	if ok, _ := l.TryLock(ctx, time.Minute); !ok {
		t.Fatalf("TryLock failed")
	}
	tok1 := l.token
	_ = l.Unlock(ctx)
	if ok, _ := l.TryLock(ctx, time.Minute); !ok {
		t.Fatalf("re-acquire failed")
	}
	if l.token == tok1 {
		t.Fatalf("holder identity must be unique per acquisition")
	}
}
