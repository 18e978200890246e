// Package querycache memoizes read-model results such as risk pages,
// dashboard summaries and analytics for a short time. Writers drop the
// affected key prefixes after every mutation.
package querycache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultSize = 1024
	DefaultTTL  = 30 * time.Second
)

// Key prefixes grouping cached entries by the data they depend on
const (
	PrefixRisks     = "risks:"
	PrefixDashboard = "dashboard:"
	PrefixAnalytics = "analytics:"
	PrefixBoard     = "board:"
)

// Cache is a size bounded, TTL based cache. A nil *Cache is valid and
// caches nothing.
type Cache struct {
	lru *expirable.LRU[string, any]
}

type config struct {
	size int
	ttl  time.Duration
}

type Option func(*config)

func WithSize(size int) Option {
	return func(c *config) {
		c.size = size
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

func New(opts ...Option) *Cache {
	cfg := &config{size: DefaultSize, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Cache{lru: expirable.NewLRU[string, any](cfg.size, nil, cfg.ttl)}
}

// Get returns the cached value for key when it exists and has type T
func Get[T any](c *Cache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Set stores value under key
func (c *Cache) Set(key string, value any) {
	if c == nil {
		return
	}
	c.lru.Add(key, value)
}

// Invalidate removes every entry whose key starts with one of prefixes
func (c *Cache) Invalidate(prefixes ...string) int {
	if c == nil {
		return 0
	}
	removed := 0
	for _, key := range c.lru.Keys() {
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				if c.lru.Remove(key) {
					removed++
				}
				break
			}
		}
	}
	return removed
}

// Purge removes every entry
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

// Len returns the number of live entries
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
