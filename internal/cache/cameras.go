// Package cache keeps a small LRU of registered camera stable strings in
// front of the store for the hot event-creation path.
package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Checker is the store lookup the cache falls back to.
type Checker interface {
	Exists(ctx context.Context, cameraID string) (bool, error)
}

// Cameras caches positive existence answers only. Negative answers are not
// cached: a camera may register at any moment.
type Cameras struct {
	known *lru.Cache[string, struct{}]
	store Checker
}

func NewCameras(store Checker, size int) (*Cameras, error) {
	known, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &Cameras{known: known, store: store}, nil
}

// Exists answers from the cache when possible.
func (c *Cameras) Exists(ctx context.Context, cameraID string) (bool, error) {
	if _, ok := c.known.Get(cameraID); ok {
		return true, nil
	}
	exists, err := c.store.Exists(ctx, cameraID)
	if err != nil {
		return false, err
	}
	if exists {
		c.known.Add(cameraID, struct{}{})
	}
	return exists, nil
}

// Invalidate drops a camera after deletion.
func (c *Cameras) Invalidate(cameraID string) {
	c.known.Remove(cameraID)
}

// MarkKnown records a camera that just registered.
func (c *Cameras) MarkKnown(cameraID string) {
	c.known.Add(cameraID, struct{}{})
}
