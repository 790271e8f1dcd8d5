package shop

import (
	"context"
	"errors"
	"sync"
	"testing"

	niche "github.com/Unrealaaaaaa/Niche-review"
	"github.com/Unrealaaaaaa/Niche-review/codec"
	"github.com/Unrealaaaaaa/Niche-review/store/memory"
)

// fakeStore is an in-memory durable store with a load counter.
type fakeStore struct {
	mu    sync.Mutex
	rows  map[uint64]Shop
	loads int
}

func (f *fakeStore) LoadByID(_ context.Context, id uint64) (Shop, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	s, ok := f.rows[id]
	return s, ok, nil
}

func (f *fakeStore) Update(_ context.Context, s Shop) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[s.ID] = s
	return nil
}

func (f *fakeStore) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func newTestService(t *testing.T, rows map[uint64]Shop, mode Mode) (*Service, *fakeStore) {
	t.Helper()
	cc, err := niche.New[Shop](niche.Options[Shop]{
		Namespace: "shop",
		Store:     memory.New(),
		Codec:     codec.JSON[Shop]{},
	})
	if err != nil {
		t.Fatalf("niche.New: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close(context.Background()) })
	fs := &fakeStore{rows: rows}
	return NewService(fs, cc, mode), fs
}

func TestGetByIDCachesHit(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t, map[uint64]Shop{1: {ID: 1, Name: "Noodle Bar"}}, PassThrough)

	for i := 0; i < 3; i++ {
		sh, ok, err := svc.GetByID(ctx, 1)
		if err != nil || !ok || sh.Name != "Noodle Bar" {
			t.Fatalf("GetByID: ok=%v err=%v sh=%+v", ok, err, sh)
		}
	}
	if n := fs.loadCount(); n != 1 {
		t.Fatalf("durable loads: got %d want 1", n)
	}
}

func TestGetByIDCachesAbsence(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t, map[uint64]Shop{}, PassThrough)

	for i := 0; i < 3; i++ {
		if _, ok, err := svc.GetByID(ctx, 42); err != nil || ok {
			t.Fatalf("GetByID on missing shop: ok=%v err=%v", ok, err)
		}
	}
	if n := fs.loadCount(); n != 1 {
		t.Fatalf("durable loads through absence marker: got %d want 1", n)
	}
}

func TestUpdateWritesThenInvalidates(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t, map[uint64]Shop{1: {ID: 1, Name: "Old"}}, PassThrough)

	if _, _, err := svc.GetByID(ctx, 1); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if err := svc.Update(ctx, Shop{ID: 1, Name: "New"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	// the next read reloads the fresh row
	sh, ok, err := svc.GetByID(ctx, 1)
	if err != nil || !ok || sh.Name != "New" {
		t.Fatalf("GetByID after Update: ok=%v err=%v sh=%+v", ok, err, sh)
	}
	if n := fs.loadCount(); n != 2 {
		t.Fatalf("durable loads: got %d want 2", n)
	}
}

func TestUpdateRejectsMissingID(t *testing.T) {
	svc, _ := newTestService(t, map[uint64]Shop{}, PassThrough)
	if err := svc.Update(context.Background(), Shop{Name: "nameless"}); !errors.Is(err, ErrMissingID) {
		t.Fatalf("got %v, want ErrMissingID", err)
	}
}

func TestMutexRebuildReads(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, map[uint64]Shop{1: {ID: 1, Name: "Noodle Bar"}}, MutexRebuild)

	sh, ok, err := svc.GetByID(ctx, 1)
	if err != nil || !ok || sh.Name != "Noodle Bar" {
		t.Fatalf("GetByID: ok=%v err=%v sh=%+v", ok, err, sh)
	}
}

func TestLogicalExpiryNeedsWarm(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, map[uint64]Shop{1: {ID: 1, Name: "Noodle Bar"}}, LogicalExpiry)

	// not warmed: the shop is invisible to this strategy
	if _, ok, err := svc.GetByID(ctx, 1); err != nil || ok {
		t.Fatalf("unwarmed GetByID: ok=%v err=%v", ok, err)
	}
	if err := svc.Warm(ctx, 1); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	sh, ok, err := svc.GetByID(ctx, 1)
	if err != nil || !ok || sh.Name != "Noodle Bar" {
		t.Fatalf("warmed GetByID: ok=%v err=%v sh=%+v", ok, err, sh)
	}
}

func TestWarmMissingShopFails(t *testing.T) {
	svc, _ := newTestService(t, map[uint64]Shop{}, LogicalExpiry)
	if err := svc.Warm(context.Background(), 42); err == nil {
		t.Fatalf("Warm on a missing shop should fail")
	}
}

func TestLogicalExpiryServesWarmedValueAfterUpdateLag(t *testing.T) {
	ctx := context.Background()
	svc, fs := newTestService(t, map[uint64]Shop{1: {ID: 1, Name: "Noodle Bar", Score: 40}}, LogicalExpiry)

	if err := svc.Warm(ctx, 1); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	// the durable row changes underneath; the fresh cached value still serves
	fs.mu.Lock()
	fs.rows[1] = Shop{ID: 1, Name: "Noodle Bar", Score: 45}
	fs.mu.Unlock()

	sh, ok, err := svc.GetByID(ctx, 1)
	if err != nil || !ok || sh.Score != 40 {
		t.Fatalf("fresh logical read: ok=%v err=%v sh=%+v", ok, err, sh)
	}
}
