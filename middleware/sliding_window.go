// middleware/sliding_window.go
package middleware

import (
	"sync"
	"time"
)

// SlidingWindow counts hits per key over a rolling window. It is an owned,
// injectable store rather than a package-level singleton so the contact
// controller can be handed a fresh instance and tests can reset state.
type SlidingWindow struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewSlidingWindow creates a limiter allowing at most limit hits per key in
// any rolling window.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	sw := &SlidingWindow{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	go sw.evictLoop()
	return sw
}

// Allow records a hit for key and reports whether it is within the limit.
// The hit is only recorded when allowed, so rejected requests do not extend
// the caller's lockout.
func (sw *SlidingWindow) Allow(key string) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	cutoff := sw.now().Add(-sw.window)
	kept := sw.hits[key][:0]
	for _, t := range sw.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= sw.limit {
		sw.hits[key] = kept
		return false
	}

	sw.hits[key] = append(kept, sw.now())
	return true
}

// Reset clears all recorded hits.
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.hits = make(map[string][]time.Time)
}

// evictLoop drops keys whose entries have all aged out, so idle IPs do not
// accumulate forever.
func (sw *SlidingWindow) evictLoop() {
	for {
		time.Sleep(sw.window)
		sw.mu.Lock()
		cutoff := sw.now().Add(-sw.window)
		for key, times := range sw.hits {
			alive := false
			for _, t := range times {
				if t.After(cutoff) {
					alive = true
					break
				}
			}
			if !alive {
				delete(sw.hits, key)
			}
		}
		sw.mu.Unlock()
	}
}
