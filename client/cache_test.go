package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGetInvalidate(t *testing.T) {
	cache := NewCache()

	_, ok := cache.Get("deals")
	assert.False(t, ok)

	cache.Set("deals", []string{"a", "b"})
	value, ok := cache.Get("deals")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, value)

	// Invalidation forces the next read to miss
	cache.Invalidate("deals")
	_, ok = cache.Get("deals")
	assert.False(t, ok)

	// Unknown keys are a no-op
	cache.Invalidate("no-such-key")
}

func TestCacheOptimisticRollbackRoundTrip(t *testing.T) {
	cache := NewCache()
	cache.Set("deal:1", []string{"first note"})

	snapshot := cache.Snapshot("deal:1")
	cache.OptimisticSet("deal:1", func(current interface{}) interface{} {
		notes := current.([]string)
		return append(append([]string{}, notes...), "speculative note")
	})

	value, ok := cache.Get("deal:1")
	require.True(t, ok)
	assert.Equal(t, []string{"first note", "speculative note"}, value)

	// Rollback restores the exact pre-mutation state
	cache.Restore(snapshot)
	value, ok = cache.Get("deal:1")
	require.True(t, ok)
	assert.Equal(t, []string{"first note"}, value)
}

func TestCacheRestoreAbsentKeyRemovesEntry(t *testing.T) {
	cache := NewCache()

	snapshot := cache.Snapshot("deal:1")
	cache.OptimisticSet("deal:1", func(current interface{}) interface{} {
		return "speculative"
	})

	_, ok := cache.Get("deal:1")
	require.True(t, ok)

	cache.Restore(snapshot)
	_, ok = cache.Get("deal:1")
	assert.False(t, ok)
}

func TestCacheRestorePreservesStaleness(t *testing.T) {
	cache := NewCache()
	cache.Set("deals", "v1")
	cache.Invalidate("deals")

	snapshot := cache.Snapshot("deals")
	cache.OptimisticSet("deals", func(interface{}) interface{} { return "v2" })
	cache.Restore(snapshot)

	// The entry was stale before the speculation and stays stale after
	_, ok := cache.Get("deals")
	assert.False(t, ok)
}

func TestCacheReset(t *testing.T) {
	cache := NewCache()
	cache.Set("a", 1)
	cache.Set("b", 2)

	cache.Reset()
	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.False(t, ok)
}
