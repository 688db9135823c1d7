package lock

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter counts hits per key within a fixed window that starts at the
// first hit.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetIn time.Duration, err error)
}

type RedisCounter struct {
	client redis.UniversalClient
}

func NewRedisCounter(client redis.UniversalClient) *RedisCounter {
	return &RedisCounter{client: client}
}

var hitScript = redis.NewScript(`
local n = redis.call("incr", KEYS[1])
if n == 1 then
  redis.call("pexpire", KEYS[1], ARGV[1])
end
return {n, redis.call("pttl", KEYS[1])}
`)

func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	res, err := hitScript.Run(ctx, c.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}
	return int(res[0]), ttl, nil
}

type bucket struct {
	count int
	reset time.Time
}

// LocalCounter keeps windows in memory. Expired buckets are swept every
// sweepEvery hits.
type LocalCounter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	hits    int
	now     func() time.Time
}

const sweepEvery = 1024

func NewLocalCounter() *LocalCounter {
	return &LocalCounter{buckets: map[string]*bucket{}, now: time.Now}
}

func (c *LocalCounter) Hit(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.hits++
	if c.hits%sweepEvery == 0 {
		for k, b := range c.buckets {
			if now.After(b.reset) {
				delete(c.buckets, k)
			}
		}
	}
	b, ok := c.buckets[key]
	if !ok || now.After(b.reset) {
		b = &bucket{reset: now.Add(window)}
		c.buckets[key] = b
	}
	b.count++
	return b.count, b.reset.Sub(now), nil
}
