package cache

import (
	"context"
	"time"
)

type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MarketTTL returns the cache lifetime for quote data at time t:
// 5 minutes during market hours, 1 hour after hours, 24 hours on weekends.
// Hours are naive local time, matching the upstream data service.
func MarketTTL(t time.Time) time.Duration {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return 24 * time.Hour
	}
	if h := t.Hour(); h >= 9 && h < 16 {
		return 5 * time.Minute
	}
	return time.Hour
}
