package engine

import "time"

// cooldownCache is a time-windowed set of token keys. It compensates for the
// marketplace read API lagging behind just-submitted transactions: a key is
// "active" for one window after being marked, and expired entries are
// evicted lazily on lookup so the map stays bounded.
//
// No mutex: exactly one cycle runs at a time, so the engine is the single
// writer (see the concurrency notes on Engine).
type cooldownCache struct {
	window time.Duration
	marked map[string]time.Time
	now    func() time.Time
}

func newCooldownCache(window time.Duration) *cooldownCache {
	return &cooldownCache{
		window: window,
		marked: make(map[string]time.Time),
		now:    time.Now,
	}
}

// mark stamps the key with the current time, restarting its window.
func (c *cooldownCache) mark(key string) {
	c.marked[key] = c.now()
}

// active reports whether the key is inside its cooldown window. An expired
// entry is deleted on the way out.
func (c *cooldownCache) active(key string) bool {
	at, ok := c.marked[key]
	if !ok {
		return false
	}
	if c.now().Sub(at) >= c.window {
		delete(c.marked, key)
		return false
	}
	return true
}

func (c *cooldownCache) size() int {
	return len(c.marked)
}
