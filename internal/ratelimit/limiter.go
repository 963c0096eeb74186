package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "juris-ia:ratelimit"
	redisTimeout  = 2 * time.Second
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// FixedWindowLimiter counts requests per key in Redis, one counter per window slot.
type FixedWindowLimiter struct {
	client redis.Scripter
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewFixedWindowLimiter(client redis.Scripter, prefix string, limit int, window time.Duration) (*FixedWindowLimiter, error) {
	if client == nil {
		return nil, errors.New("rate limiter requires a redis client")
	}
	if limit <= 0 {
		return nil, errors.New("rate limiter requires a positive limit")
	}
	if window < time.Millisecond {
		return nil, errors.New("rate limiter window must be at least 1ms")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &FixedWindowLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

// Allow reports whether key is still within quota. Redis failures deny the request.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	windowMs := l.window.Milliseconds()
	slot := l.now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return count <= int64(l.limit), nil
}
