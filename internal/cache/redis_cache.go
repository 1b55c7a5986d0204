package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// One key namespace per cached lookup. Only the turn pipeline's soft
// lookups (global base prompt, agent by slug) go through the cache, so
// a stale or evicted entry can never change a turn's outcome, only how
// many Postgres round trips it costs.
func KeySetting(key string) string { return "setting:" + key }
func KeyAgent(slug string) string  { return "agent:" + slug }

// RedisCache stores values as JSON blobs. An entry that no longer
// decodes into the caller's type is evicted and reported as a miss, so
// a model change never requires flushing Redis by hand.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
