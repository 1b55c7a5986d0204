package cache

import (
	"context"
	"time"
)

// Cache is optional everywhere it is injected: services treat a miss,
// an error, and a nil Cache the same way.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
