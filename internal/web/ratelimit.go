package web

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a Redis-backed sliding-window rate limiter keyed by
// client identity. The window state lives in Redis so every instance of
// the service shares one budget per client.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// RateLimitInfo reports the outcome of one rate-limit check.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Allowed   bool
}

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	Client *redis.Client
	// Limit is the maximum number of requests allowed per window.
	Limit int
	// Window is the sliding window duration.
	Window time.Duration
	// Prefix namespaces the Redis keys.
	Prefix string
}

// DefaultRateLimiterConfig allows 100 requests per minute.
func DefaultRateLimiterConfig(client *redis.Client) RateLimiterConfig {
	return RateLimiterConfig{
		Client: client,
		Limit:  100,
		Window: time.Minute,
		Prefix: "seometa:ratelimit:",
	}
}

// NewRateLimiter validates the configuration and creates a limiter.
func NewRateLimiter(config RateLimiterConfig) (*RateLimiter, error) {
	if config.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if config.Limit <= 0 {
		return nil, errors.New("limit must be greater than 0")
	}
	if config.Window <= 0 {
		return nil, errors.New("window must be greater than 0")
	}
	return &RateLimiter{
		client: config.Client,
		limit:  config.Limit,
		window: config.Window,
		prefix: config.Prefix,
	}, nil
}

// slidingWindow trims expired entries, counts the rest and conditionally
// records the new request, all in one atomic script.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, 0, window_start)
	local current = redis.call('ZCARD', key)

	if current < limit then
		redis.call('ZADD', key, now, now)
		redis.call('EXPIRE', key, window)
		return {1, current + 1}
	else
		return {0, current}
	end
`)

// Allow checks and records one request for the given key.
func (r *RateLimiter) Allow(ctx context.Context, key string) (*RateLimitInfo, error) {
	now := time.Now()
	windowStart := now.Add(-r.window)

	result, err := slidingWindow.Run(ctx, r.client, []string{r.prefix + key},
		now.UnixNano(),
		windowStart.UnixNano(),
		r.limit,
		int(r.window.Seconds()),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return nil, errors.New("unexpected rate limit script result")
	}
	allowed, ok := values[0].(int64)
	if !ok {
		return nil, errors.New("invalid allowed value from redis")
	}
	count, ok := values[1].(int64)
	if !ok {
		return nil, errors.New("invalid count value from redis")
	}

	remaining := r.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitInfo{
		Limit:     r.limit,
		Remaining: remaining,
		ResetAt:   now.Add(r.window),
		Allowed:   allowed == 1,
	}, nil
}

// Reset clears the window for a key.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
