package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingChecker struct {
	exists bool
	calls  int
}

func (c *countingChecker) Exists(ctx context.Context, cameraID string) (bool, error) {
	c.calls++
	return c.exists, nil
}

func TestExistsCachesPositiveAnswers(t *testing.T) {
	store := &countingChecker{exists: true}
	c, err := NewCameras(store, 4)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ok, err := c.Exists(context.Background(), "camera_1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, store.calls, "only the first lookup hits the store")
}

func TestExistsNeverCachesNegativeAnswers(t *testing.T) {
	store := &countingChecker{exists: false}
	c, err := NewCameras(store, 4)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ok, err := c.Exists(context.Background(), "camera_9")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 3, store.calls, "a camera may register at any moment")
}

func TestInvalidate(t *testing.T) {
	store := &countingChecker{exists: true}
	c, err := NewCameras(store, 4)
	require.NoError(t, err)

	_, err = c.Exists(context.Background(), "camera_1")
	require.NoError(t, err)
	c.Invalidate("camera_1")

	_, err = c.Exists(context.Background(), "camera_1")
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestMarkKnown(t *testing.T) {
	store := &countingChecker{exists: true}
	c, err := NewCameras(store, 4)
	require.NoError(t, err)

	c.MarkKnown("camera_1")
	ok, err := c.Exists(context.Background(), "camera_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, store.calls)
}
