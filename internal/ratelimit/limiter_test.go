package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLimiter(client), mr
}

func TestCheckAllowsUnderLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	cfg := Config{Rate: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		d, err := limiter.Check(context.Background(), "10.0.0.1", cfg)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 3, d.Limit)
		assert.Equal(t, 3-(i+1), d.Remaining)
	}
}

func TestCheckDeniesOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	cfg := Config{Rate: 2, Window: time.Minute}

	for i := 0; i < 2; i++ {
		_, err := limiter.Check(context.Background(), "10.0.0.1", cfg)
		require.NoError(t, err)
	}

	d, err := limiter.Check(context.Background(), "10.0.0.1", cfg)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Zero(t, d.Remaining)
	assert.Equal(t, 60, d.RetryAfter)
}

func TestCheckIsPerKey(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	cfg := Config{Rate: 1, Window: time.Minute}

	_, err := limiter.Check(context.Background(), "10.0.0.1", cfg)
	require.NoError(t, err)

	d, err := limiter.Check(context.Background(), "10.0.0.2", cfg)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "a different client gets its own window")
}

func TestCheckWindowExpiry(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	cfg := Config{Rate: 1, Window: time.Minute}

	_, err := limiter.Check(context.Background(), "10.0.0.1", cfg)
	require.NoError(t, err)

	d, err := limiter.Check(context.Background(), "10.0.0.1", cfg)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	mr.FastForward(61 * time.Second)

	d, err = limiter.Check(context.Background(), "10.0.0.1", cfg)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "counter resets after the window expires")
}

func TestCheckRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	limiter := NewLimiter(client)
	mr.Close()

	_, err := limiter.Check(context.Background(), "10.0.0.1", Config{Rate: 1, Window: time.Minute})
	assert.ErrorIs(t, err, ErrRedisUnavailable)
}
