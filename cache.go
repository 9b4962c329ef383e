package fuelindexer

import "sync"

// reflectionKey identifies one loaded schema reflection by its identity
// tuple, matching the table namespace "{namespace}_{identifier}".
type reflectionKey struct {
	namespace  string
	identifier string
}

// ReflectionCache caches loaded schema reflections keyed by
// (namespace, identifier). Entries are immutable once stored — a reload
// invalidates and replaces the entry rather than mutating it in place,
// so readers holding a previously returned value never observe a torn read.
type ReflectionCache[T any] struct {
	mu      sync.RWMutex
	entries map[reflectionKey]T
}

// NewReflectionCache returns an empty ReflectionCache.
func NewReflectionCache[T any]() *ReflectionCache[T] {
	return &ReflectionCache[T]{entries: make(map[reflectionKey]T)}
}

// Get returns the cached reflection for (namespace, identifier), if present.
func (c *ReflectionCache[T]) Get(namespace, identifier string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[reflectionKey{namespace, identifier}]
	return v, ok
}

// Set stores or replaces the cached reflection for (namespace, identifier).
func (c *ReflectionCache[T]) Set(namespace, identifier string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[reflectionKey{namespace, identifier}] = v
}

// Invalidate removes the cached reflection for (namespace, identifier), so
// the next Get for that pair misses. Nothing in this module calls it; the
// supervisor's AssetReload and IndexRevert handling does not touch a cache.
func (c *ReflectionCache[T]) Invalidate(namespace, identifier string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, reflectionKey{namespace, identifier})
}
