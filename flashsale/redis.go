package flashsale

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// admitScript is the single indivisible admission step. Return codes:
// 0 admitted, 1 out of stock, 2 duplicate order.
//
// KEYS[1] = stock counter, KEYS[2] = per-user marker hash,
// ARGV[1] = user id, ARGV[2] = admission timestamp (marker value).
var admitScript = goredis.NewScript(`
local stock = tonumber(redis.call('get', KEYS[1]))
if stock == nil or stock <= 0 then
    return 1
end
if redis.call('hexists', KEYS[2], ARGV[1]) == 1 then
    return 2
end
redis.call('incrby', KEYS[1], -1)
redis.call('hset', KEYS[2], ARGV[1], ARGV[2])
return 0
`)

// seedScript resets stock and markers together so a reseed can never be
// observed half-done.
var seedScript = goredis.NewScript(`
redis.call('set', KEYS[1], ARGV[1])
redis.call('del', KEYS[2])
return 0
`)

// RedisAdmitter runs the admission script directly against Redis. It
// deliberately bypasses the cache client: admission is not a read-through
// concern, it is one scripted call.
type RedisAdmitter struct {
	rdb goredis.UniversalClient
}

var _ Admitter = (*RedisAdmitter)(nil)

func NewRedisAdmitter(rdb goredis.UniversalClient) (*RedisAdmitter, error) {
	if rdb == nil {
		return nil, errors.New("flashsale: nil redis client")
	}
	return &RedisAdmitter{rdb: rdb}, nil
}

func stockKey(voucherID uint64) string {
	return "seckill:stock:" + strconv.FormatUint(voucherID, 10)
}

func ordersKey(voucherID uint64) string {
	return "seckill:orders:" + strconv.FormatUint(voucherID, 10)
}

func (a *RedisAdmitter) Admit(ctx context.Context, voucherID, userID uint64) (Verdict, error) {
	n, err := admitScript.Run(ctx, a.rdb,
		[]string{stockKey(voucherID), ordersKey(voucherID)},
		strconv.FormatUint(userID, 10),
		strconv.FormatInt(time.Now().Unix(), 10),
	).Int64()
	if err != nil {
		return 0, err
	}
	switch n {
	case 0:
		return Admitted, nil
	case 1:
		return OutOfStock, nil
	case 2:
		return Duplicate, nil
	default:
		return 0, fmt.Errorf("flashsale: unexpected admission result %d", n)
	}
}

func (a *RedisAdmitter) Seed(ctx context.Context, voucherID uint64, stock int64) error {
	return seedScript.Run(ctx, a.rdb,
		[]string{stockKey(voucherID), ordersKey(voucherID)},
		strconv.FormatInt(stock, 10),
	).Err()
}
