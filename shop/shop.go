// Package shop exposes the cached shop-entity surface: reads go through the
// cache client with a configurable strategy, writes go to the durable store
// first and invalidate the cache second.
package shop

import (
	"context"
	"errors"
	"strconv"

	niche "github.com/Unrealaaaaaa/Niche-review"
)

// Shop is a local business listing.
type Shop struct {
	ID       uint64 `json:"id" msgpack:"id"`
	Name     string `json:"name" msgpack:"name"`
	TypeID   uint64 `json:"typeId" msgpack:"typeId"`
	Address  string `json:"address" msgpack:"address"`
	AvgPrice int64  `json:"avgPrice" msgpack:"avgPrice"`
	Score    int32  `json:"score" msgpack:"score"`
}

// Store is the durable persistence collaborator.
type Store interface {
	// LoadByID returns (shop, true, nil) when the row exists.
	LoadByID(ctx context.Context, id uint64) (Shop, bool, error)
	Update(ctx context.Context, s Shop) error
}

// Mode selects the cache strategy for reads.
type Mode int

const (
	// PassThrough caches positives and confirmed absences; misses load
	// inline.
	PassThrough Mode = iota
	// MutexRebuild allows at most one concurrent source rebuild per shop.
	MutexRebuild
	// LogicalExpiry serves stale-while-revalidate; shops must be warmed
	// (Warm) before the strategy sees them.
	LogicalExpiry
)

var ErrMissingID = errors.New("shop: missing id")

type Service struct {
	shops Store
	cache niche.Client[Shop]
	mode  Mode
}

func NewService(shops Store, cache niche.Client[Shop], mode Mode) *Service {
	return &Service{shops: shops, cache: cache, mode: mode}
}

func cacheKey(id uint64) string { return strconv.FormatUint(id, 10) }

// GetByID returns the shop through the configured cache strategy.
// ok=false means confirmed absent (or, under LogicalExpiry, never warmed).
func (s *Service) GetByID(ctx context.Context, id uint64) (Shop, bool, error) {
	load := func(ctx context.Context, _ string) (Shop, bool, error) {
		return s.shops.LoadByID(ctx, id)
	}
	switch s.mode {
	case MutexRebuild:
		return s.cache.GetWithMutex(ctx, cacheKey(id), load)
	case LogicalExpiry:
		return s.cache.GetWithLogicalExpiry(ctx, cacheKey(id), load)
	default:
		return s.cache.Get(ctx, cacheKey(id), load)
	}
}

// Update writes the durable row first and then drops the cached entry.
// In that order: deleting first would let a concurrent read repopulate the
// cache with the old row.
func (s *Service) Update(ctx context.Context, sh Shop) error {
	if sh.ID == 0 {
		return ErrMissingID
	}
	if err := s.shops.Update(ctx, sh); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, cacheKey(sh.ID))
}

// Warm seeds the logical-expiry keyspace for one shop from the durable
// store. Used ahead of events that will read through LogicalExpiry.
func (s *Service) Warm(ctx context.Context, id uint64) error {
	sh, ok, err := s.shops.LoadByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("shop: cannot warm a missing shop")
	}
	return s.cache.Warm(ctx, cacheKey(id), sh)
}
