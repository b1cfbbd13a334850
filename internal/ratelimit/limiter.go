// Package ratelimit implements a redis-backed request limiter for the API.
// Camera agents retry aggressively when the coordinator is slow; the
// limiter sheds that load before it reaches the pool.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrRedisUnavailable  = errors.New("redis unavailable")
)

// Decision is the outcome for one request.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter int // seconds
}

// Config is one window definition.
type Config struct {
	Rate   int           `yaml:"rate"`
	Window time.Duration `yaml:"window"`
}

type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Atomic INCR with expiry set on first hit; the key's TTL bounds the window.
var windowScript = redis.NewScript(`
	local current = redis.call("INCR", KEYS[1])
	if tonumber(current) == 1 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
	end
	return current
`)

// Check counts a request against the key's window. Fail-open is the
// caller's choice: ErrRedisUnavailable is distinct from a denied decision.
func (l *Limiter) Check(ctx context.Context, key string, cfg Config) (*Decision, error) {
	count, err := windowScript.Run(ctx, l.client, []string{"rl:" + key}, cfg.Window.Milliseconds()).Int()
	if err != nil {
		return nil, ErrRedisUnavailable
	}

	remaining := cfg.Rate - count
	if remaining < 0 {
		remaining = 0
	}
	return &Decision{
		Allowed:    count <= cfg.Rate,
		Limit:      cfg.Rate,
		Remaining:  remaining,
		RetryAfter: int(cfg.Window.Seconds()),
	}, nil
}
