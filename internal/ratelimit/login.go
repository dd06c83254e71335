package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles credential attempts per email with a shared Redis
// TTL counter, so the limit holds across instances and restarts (unlike an
// in-process map).
type LoginLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Limit    int
	Window   time.Duration
}

func NewLoginLimiter(cfg Config) *LoginLimiter {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	limit := cfg.Limit
	if limit <= 0 {
		limit = 5
	}

	window := cfg.Window
	if window <= 0 {
		window = 15 * time.Minute
	}

	return &LoginLimiter{rdb: rdb, limit: limit, window: window}
}

func (l *LoginLimiter) Ping(ctx context.Context) error {
	return l.rdb.Ping(ctx).Err()
}

func (l *LoginLimiter) Close() error {
	return l.rdb.Close()
}

// Allow records one attempt for the email and reports whether it is within
// the limit. The first attempt in a window sets the TTL; the counter expires
// on its own afterwards.
func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	key := "login:attempts:" + strings.ToLower(strings.TrimSpace(email))

	count, err := l.rdb.Incr(ctx, key).Result()

	if err != nil {
		return false, err
	}

	if count == 1 {
		// best effort; a missing TTL self-heals on the next window check
		_ = l.rdb.Expire(ctx, key, l.window).Err()
	}

	return count <= int64(l.limit), nil
}

// Reset clears the counter, called after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	key := "login:attempts:" + strings.ToLower(strings.TrimSpace(email))

	return l.rdb.Del(ctx, key).Err()
}
