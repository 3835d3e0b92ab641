package client

import (
	"sync"
)

// Cache is the process-local store behind the SDK's list and detail views.
// Keys follow the server's invalidation vocabulary ("deals", "commissions",
// "commission-stats", "deal:<id>"). It is rebuilt from scratch on restart;
// there is no persistence.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	value interface{}
	stale bool
}

// Snapshot captures one key's state so an optimistic change can be undone.
type Snapshot struct {
	key     string
	value   interface{}
	stale   bool
	existed bool
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Get returns the cached value for key. ok is false when the entry is
// missing or has been invalidated, which tells the caller to refetch.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists || entry.stale {
		return nil, false
	}
	return entry.value, true
}

// Set stores a fresh value for key.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{value: value}
}

// Invalidate marks the given keys stale; the next Get on each misses and
// forces a refetch. Unknown keys are ignored.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if entry, exists := c.entries[key]; exists {
			entry.stale = true
		}
	}
}

// Snapshot captures key's current state, including absence.
func (c *Cache) Snapshot(key string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return Snapshot{key: key}
	}
	return Snapshot{key: key, value: entry.value, stale: entry.stale, existed: true}
}

// OptimisticSet applies updater to the current value (nil when absent) and
// stores the result without touching staleness. Pair with Snapshot/Restore.
func (c *Cache) OptimisticSet(key string, updater func(current interface{}) interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var current interface{}
	if entry, exists := c.entries[key]; exists {
		current = entry.value
	}
	next := updater(current)
	if entry, exists := c.entries[key]; exists {
		entry.value = next
	} else {
		c.entries[key] = &cacheEntry{value: next}
	}
}

// Restore puts the key back exactly as it was at snapshot time. Restoring a
// snapshot of an absent key removes the entry, so apply-then-restore is a
// round-trip no-op.
func (c *Cache) Restore(snapshot Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !snapshot.existed {
		delete(c.entries, snapshot.key)
		return
	}
	c.entries[snapshot.key] = &cacheEntry{value: snapshot.value, stale: snapshot.stale}
}

// Reset drops everything.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}
