// Package redis implements store.Store on top of go-redis. Compare-and-delete
// runs as a server-side Lua script so the compare and the delete are one
// atomic step.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Unrealaaaaaa/Niche-review/store"
)

var ErrNilClient = errors.New("redis store: nil client")

// compareAndDel deletes KEYS[1] only when it still holds ARGV[1].
var compareAndDel = goredis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
    return redis.call('del', KEYS[1])
end
return 0
`)

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ store.Store = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0 // non-positive => no expiry
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *Redis) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (s *Redis) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *Redis) Incr(ctx context.Context, key string) (int64, error) {
	return s.rdb.Incr(ctx, key).Result()
}

func (s *Redis) HSet(ctx context.Context, key, field, value string) error {
	return s.rdb.HSet(ctx, key, field, value).Err()
}

func (s *Redis) HGet(ctx context.Context, key, field string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, key, field).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Redis) CompareAndDel(ctx context.Context, key, expect string) (bool, error) {
	n, err := compareAndDel.Run(ctx, s.rdb, []string{key}, expect).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Close releases the underlying client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Redis) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
