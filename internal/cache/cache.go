// Package cache holds recently fetched catalog results in memory.
package cache

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultTTL is how long a cached result stays fresh.
const DefaultTTL = 5 * time.Minute

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache maps query keys to results. Each entry expires on its own TTL after
// it was stored; expired entries are dropped when read. There is no size
// bound.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
	metrics *Metrics
}

// Option configures a Cache.
type Option[V any] func(*Cache[V])

// WithClock replaces time.Now.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

// WithMetrics records hits and misses on m.
func WithMetrics[V any](m *Metrics) Option[V] {
	return func(c *Cache[V]) { c.metrics = m }
}

// New creates a cache. A non-positive ttl falls back to DefaultTTL.
func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key if present and fresh.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		ok = false
	}
	c.metrics.record(ok)
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, stamping only this entry.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Metrics counts cache lookups.
type Metrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
}

// NewMetrics registers hit/miss counters for the named cache on reg.
func NewMetrics(name string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "amakart_cache_hits_total",
			Help:        "Cache lookups that returned a fresh entry",
			ConstLabels: prometheus.Labels{"cache": name},
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "amakart_cache_misses_total",
			Help:        "Cache lookups that found no fresh entry",
			ConstLabels: prometheus.Labels{"cache": name},
		}),
	}
	reg.MustRegister(m.hits, m.misses)
	return m
}

func (m *Metrics) record(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.hits.Inc()
		return
	}
	m.misses.Inc()
}
