package shout

import (
	"sync"
	"time"
)

// Cooldown is the per-sender posting gate: one accepted post per identity per
// window. It keeps the last-accepted timestamp per identity in a map; a
// rejected attempt never refreshes that timestamp, so the window always runs
// from the last acceptance.
//
// Keys are free-text display names, so the map grows without bound over a
// long-running process. That is an accepted limitation for this low-traffic
// feature; the edge IP limiter in the HTTP layer bounds overall abuse.
type Cooldown struct {
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// NewCooldown constructs a Cooldown with the given window. A zero window
// accepts every attempt.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// TryAcquire reports whether identity may post at time now. On acceptance it
// records now as the identity's new last-accepted time.
func (c *Cooldown) TryAcquire(identity string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.last[identity]; ok && now.Sub(prev) < c.window {
		return false
	}
	c.last[identity] = now
	return true
}
