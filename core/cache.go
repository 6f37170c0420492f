package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TTLCache is a small keyed cache whose entries expire after a fixed TTL.
// It is owned by whoever creates it; concurrent loads of the same key are collapsed.
type TTLCache[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[K]ttlEntry[V]
	gen     uint64 // bumped by Delete and Purge
	flight  singleflight.Group

	NowFunc func() time.Time // mockable
}

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:     ttl,
		entries: make(map[K]ttlEntry[V]),
		NowFunc: time.Now,
	}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.NowFunc().Before(entry.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

func (c *TTLCache[K, V]) set(key K, value V) {
	c.entries[key] = ttlEntry[V]{value: value, expiresAt: c.NowFunc().Add(c.ttl)}
}

func (c *TTLCache[K, V]) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// setIfCurrent stores value unless the cache was invalidated since gen was read.
func (c *TTLCache[K, V]) setIfCurrent(gen uint64, key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.set(key, value)
	}
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.gen++
}

// Purge drops every entry.
func (c *TTLCache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]ttlEntry[V])
	c.gen++
}

// GetOrLoad returns the cached value for key or calls load and caches its result.
// Errors are not cached, and a value loaded across a Delete or Purge is returned but not cached.
// The shared load is not cancelled with the caller that started it.
func (c *TTLCache[K, V]) GetOrLoad(ctx context.Context, key K, load func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	gen := c.generation()
	// loads started after an invalidation must not join an older flight
	flightKey := fmt.Sprintf("%d/%v", gen, key)
	ch := c.flight.DoChan(flightKey, func() (interface{}, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.setIfCurrent(gen, key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
