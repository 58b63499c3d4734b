package redis

import (
	"context"
	"fmt"
	"time"

	"docustream/internal/domain/ports"
)

// Compile-time checks
var (
	_ ports.RateLimiter = (*RateLimiter)(nil)
	_ ports.RateLimiter = (*NoopLimiter)(nil)
)

// RateLimiter counts events per key in a fixed window (INCR + EXPIRE).
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// UploadKey buckets upload attempts by client address.
func UploadKey(remoteAddr string) string {
	return fmt.Sprintf("rate_limit:upload:%s", remoteAddr)
}

// NoopLimiter is used when redis is not configured.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}
