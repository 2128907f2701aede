package store

import (
	"context"
	"time"

	"pantry/internal/cache"
	"pantry/internal/core"
)

const documentKey = "document"

// Cached wraps a store with a short-lived read cache: bursts of loads
// (every interaction reloads the whole document) hit the inner store once
// per TTL. Saves write through and invalidate.
type Cached struct {
	inner Store
	cache *cache.LRU[core.Document]
}

func NewCached(inner Store, ttl time.Duration) *Cached {
	return &Cached{
		inner: inner,
		cache: cache.NewLRU[core.Document](1, ttl),
	}
}

func (c *Cached) Load(ctx context.Context) (core.Document, error) {
	if doc, ok := c.cache.Get(documentKey); ok {
		return doc.Clone(), nil
	}
	doc, err := c.inner.Load(ctx)
	if err != nil {
		return core.Document{}, err
	}
	c.cache.Set(documentKey, doc.Clone())
	return doc, nil
}

func (c *Cached) Save(ctx context.Context, doc core.Document) error {
	if err := c.inner.Save(ctx, doc); err != nil {
		return err
	}
	c.cache.Set(documentKey, doc.Clone())
	return nil
}
