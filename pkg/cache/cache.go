package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cache stores rendered responses. Writers invalidate by key prefix.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, val string, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Nop never stores anything; it is the default when caching is disabled.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool)               { return "", false }
func (Nop) Set(context.Context, string, string, time.Duration) error { return nil }
func (Nop) DeletePrefix(context.Context, string) error               { return nil }

type InMemoryCache struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

type entry struct {
	val string
	exp time.Time
}

func NewInMemory() *InMemoryCache {
	return &InMemoryCache{data: make(map[string]entry), now: time.Now}
}

func (c *InMemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.exp.IsZero() && c.now().After(e.exp) {
		c.mu.Lock()
		if cur, ok := c.data[key]; ok && cur.exp.Equal(e.exp) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return e.val, true
}

func (c *InMemoryCache) Set(_ context.Context, key string, val string, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.data[key] = entry{val: val, exp: exp}
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Prune drops expired entries and reports how many were removed.
func (c *InMemoryCache) Prune() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.data {
		if !e.exp.IsZero() && now.After(e.exp) {
			delete(c.data, k)
			n++
		}
	}
	return n
}
