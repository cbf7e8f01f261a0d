// Package readcache holds the process-local mapping from key to last-known
// decoded value. It short-circuits repeated reads without touching the
// backend, is populated on successful writes and read-throughs, invalidated
// on delete/clear, and never persisted.
package readcache

import "sync"

// Cache is the local read cache capability. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, v any)
	Del(key string)
	Clear()
}

// Map is the default implementation: an RWMutex-guarded map with no
// eviction. Every Set is immediately visible to Get, which the facade's
// read-after-write behavior relies on.
type Map struct {
	mu sync.RWMutex
	m  map[string]any
}

var _ Cache = (*Map)(nil)

func NewMap() *Map {
	return &Map{m: make(map[string]any)}
}

func (c *Map) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.m[key]
	c.mu.RUnlock()
	return v, ok
}

func (c *Map) Set(key string, v any) {
	c.mu.Lock()
	c.m[key] = v
	c.mu.Unlock()
}

func (c *Map) Del(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *Map) Clear() {
	c.mu.Lock()
	c.m = make(map[string]any)
	c.mu.Unlock()
}
