package ports

import (
	"context"
	"time"
)

// RateLimiter answers whether one more event is allowed for key within
// the current window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
