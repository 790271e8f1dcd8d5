// Package seq mints 64-bit, time-ordered, collision-free identifiers backed
// by the shared store's atomic increment.
package seq

import (
	"context"
	"time"

	"github.com/Unrealaaaaaa/Niche-review/store"
)

const (
	// epoch is 2022-01-01T00:00:00Z. Fixed forever: changing it would fold
	// new ids back into the range of already-issued ones.
	epoch = 1640995200

	counterBits = 32
	counterMask = 1<<counterBits - 1
)

// Generator produces ids of the form (secondsSinceEpoch << 32) | counter.
// The counter is a per-(prefix, calendar-day) atomic increment, so ids are
// strictly increasing within a prefix and day and unique deployment-wide as
// long as all processes share one store. Across day boundaries ordering is
// only approximate (the counter resets). A day with more than 2^32 ids for
// one prefix would wrap the counter; that is accepted, not defended against.
type Generator struct {
	store store.Store
	now   func() time.Time
}

func New(s store.Store) *Generator {
	return &Generator{store: s, now: time.Now}
}

func (g *Generator) Next(ctx context.Context, prefix string) (uint64, error) {
	now := g.now().UTC()
	ts := uint64(now.Unix() - epoch)

	day := now.Format("2006:01:02")
	n, err := g.store.Incr(ctx, "seq:"+prefix+":"+day)
	if err != nil {
		return 0, err
	}
	return ts<<counterBits | uint64(n)&counterMask, nil
}
