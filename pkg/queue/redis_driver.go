package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// promote moves due members of the delayed set onto the ready list in one
// step so concurrent workers never promote the same job twice.
var promote = redis.NewScript(`
local due = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", 0, 100)
for _, job in ipairs(due) do
  redis.call("ZREM", KEYS[1], job)
  redis.call("LPUSH", KEYS[2], job)
end
return #due
`)

// RedisDriver is a durable queue driver backed by Redis.
// Immediate jobs use LPUSH/BRPOP on a list. Delayed jobs wait in a sorted
// set scored by the Unix time they become due.
type RedisDriver struct {
	rdb        *redis.Client
	readyKey   string
	delayedKey string
	wait       time.Duration
}

// NewRedisDriver creates a driver for the named queue.
func NewRedisDriver(rdb *redis.Client, name string) *RedisDriver {
	return &RedisDriver{
		rdb:        rdb,
		readyKey:   "vastra:queue:" + name,
		delayedKey: "vastra:queue:" + name + ":delayed",
		wait:       5 * time.Second,
	}
}

// Push adds a job payload to the ready list.
func (d *RedisDriver) Push(ctx context.Context, payload []byte) error {
	if err := d.rdb.LPush(ctx, d.readyKey, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

// PushDelayed parks a job in the delayed set until delay has passed.
func (d *RedisDriver) PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error {
	runAt := float64(time.Now().Add(delay).Unix())
	if err := d.rdb.ZAdd(ctx, d.delayedKey, redis.Z{Score: runAt, Member: string(payload)}).Err(); err != nil {
		return fmt.Errorf("queue/redis: push delayed: %w", err)
	}
	return nil
}

// Pop promotes due delayed jobs, then waits on the ready list.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := promote.Run(ctx, d.rdb, []string{d.delayedKey, d.readyKey}, now).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("queue/redis: promote: %w", err)
	}

	result, err := d.rdb.BRPop(ctx, d.wait, d.readyKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	}
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}
