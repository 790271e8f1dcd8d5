package seq

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Unrealaaaaaa/Niche-review/store/memory"
)

func TestNextLayout(t *testing.T) {
	ctx := context.Background()
	g := New(memory.New())
	at := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return at }

	id, err := g.Next(ctx, "order")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	wantTS := uint64(at.Unix() - epoch)
	if id>>counterBits != wantTS {
		t.Fatalf("timestamp bits: got %d want %d", id>>counterBits, wantTS)
	}
	if id&counterMask != 1 {
		t.Fatalf("first counter value: got %d want 1", id&counterMask)
	}
}

func TestNextMonotonicWithinDay(t *testing.T) {
	ctx := context.Background()
	g := New(memory.New())
	at := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return at }

	var prev uint64
	for i := 0; i < 10; i++ {
		id, err := g.Next(ctx, "order")
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if id <= prev {
			t.Fatalf("ids must strictly increase: %d then %d", prev, id)
		}
		prev = id
	}
}

func TestNextCounterResetsAcrossDays(t *testing.T) {
	ctx := context.Background()
	g := New(memory.New())

	day1 := time.Date(2023, 6, 1, 23, 59, 59, 0, time.UTC)
	g.now = func() time.Time { return day1 }
	if _, err := g.Next(ctx, "order"); err != nil {
		t.Fatalf("Next: %v", err)
	}

	day2 := day1.Add(time.Second)
	g.now = func() time.Time { return day2 }
	id, err := g.Next(ctx, "order")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if id&counterMask != 1 {
		t.Fatalf("counter should reset on a new day: got %d", id&counterMask)
	}
}

func TestPrefixesAreIndependent(t *testing.T) {
	ctx := context.Background()
	g := New(memory.New())
	at := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return at }

	for i := 0; i < 3; i++ {
		if _, err := g.Next(ctx, "order"); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	id, err := g.Next(ctx, "refund")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if id&counterMask != 1 {
		t.Fatalf("prefixes must not share counters: got %d", id&counterMask)
	}
}

func TestNextConcurrentDistinct(t *testing.T) {
	ctx := context.Background()
	g := New(memory.New())

	const n = 200
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := g.Next(ctx, "order")
			if err != nil {
				t.Errorf("Next: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d distinct ids, want %d", len(seen), n)
	}
}
