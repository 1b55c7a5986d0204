package config

import (
	"context"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to Redis when an address is configured. Redis is an
// optional cache here: a missing address returns (nil, nil) and callers
// run uncached.
func NewRedis(ctx context.Context) (*redis.Client, error) {
	val := os.Getenv("REDIS_ADDR")
	if val == "" {
		val = os.Getenv("REDIS_URI")
	}
	if val == "" {
		val = os.Getenv("REDIS_URL")
	}
	if val == "" {
		return nil, nil
	}

	var client *redis.Client
	if strings.HasPrefix(val, "redis://") || strings.HasPrefix(val, "rediss://") {
		opt, err := redis.ParseURL(val)
		if err != nil {
			return nil, err
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: val})
	}

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}
	return client, nil
}
