package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newTestWindow builds a limiter with a controllable clock and no eviction
// goroutine.
func newTestWindow(limit int, window time.Duration) (*SlidingWindow, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sw := &SlidingWindow{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    func() time.Time { return now },
	}
	return sw, &now
}

func TestSlidingWindowAllowsUpToLimit(t *testing.T) {
	sw, _ := newTestWindow(3, time.Minute)

	assert.True(t, sw.Allow("10.0.0.1"))
	assert.True(t, sw.Allow("10.0.0.1"))
	assert.True(t, sw.Allow("10.0.0.1"))
	assert.False(t, sw.Allow("10.0.0.1"))
}

func TestSlidingWindowKeysAreIndependent(t *testing.T) {
	sw, _ := newTestWindow(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, sw.Allow("10.0.0.1"))
	}
	assert.False(t, sw.Allow("10.0.0.1"))

	// A different caller is unaffected
	assert.True(t, sw.Allow("10.0.0.2"))
}

func TestSlidingWindowSlides(t *testing.T) {
	sw, now := newTestWindow(3, time.Minute)

	// Hits at t+0s, t+10s, t+20s
	assert.True(t, sw.Allow("10.0.0.1"))
	*now = now.Add(10 * time.Second)
	assert.True(t, sw.Allow("10.0.0.1"))
	*now = now.Add(10 * time.Second)
	assert.True(t, sw.Allow("10.0.0.1"))
	assert.False(t, sw.Allow("10.0.0.1"))

	// t+59s: the oldest hit still counts
	*now = now.Add(39 * time.Second)
	assert.False(t, sw.Allow("10.0.0.1"))

	// t+61s: only the first hit has aged out, so exactly one slot frees up
	*now = now.Add(2 * time.Second)
	assert.True(t, sw.Allow("10.0.0.1"))
	assert.False(t, sw.Allow("10.0.0.1"))
}

func TestSlidingWindowRejectedHitsDoNotExtendLockout(t *testing.T) {
	sw, now := newTestWindow(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, sw.Allow("10.0.0.1"))
	}

	// Hammering while limited must not push the lockout further out
	for i := 0; i < 10; i++ {
		*now = now.Add(time.Second)
		assert.False(t, sw.Allow("10.0.0.1"))
	}

	// 61s after the first allowed hit the caller gets a slot back
	*now = now.Add(51 * time.Second)
	assert.True(t, sw.Allow("10.0.0.1"))
}

func TestSlidingWindowReset(t *testing.T) {
	sw, _ := newTestWindow(1, time.Minute)

	assert.True(t, sw.Allow("10.0.0.1"))
	assert.False(t, sw.Allow("10.0.0.1"))

	sw.Reset()
	assert.True(t, sw.Allow("10.0.0.1"))
}
