package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/seatwise/seatwise/internal/config"
	"go.uber.org/fx"
)

const keyWriteClient = "write:client:%s"

const (
	defaultWriteRate  = 10.0
	defaultWriteBurst = 30
)

// WriteLimiter throttles mutating requests per client. With no redis address
// configured the limiter is disabled and every request passes.
type WriteLimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

func NewWriteLimiter(cfg config.Config) *WriteLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &WriteLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &WriteLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    defaultWriteRate,
		burst:   defaultWriteBurst,
	}
}

func (l *WriteLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *WriteLimiter) Allow(ctx context.Context, clientKey string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyWriteClient, strings.TrimSpace(clientKey)), l.rate, l.burst)
}

var Module = fx.Module("rate.limit",
	fx.Provide(NewWriteLimiter),
)
