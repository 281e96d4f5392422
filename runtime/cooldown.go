package runtime

import (
	"sync"
	"time"
	"tpa-lab/contract"
	"tpa-lab/domain"
)

// CooldownTracker keeps per-actor cooldown deadlines.
// Expired entries are removed lazily when checked.
type CooldownTracker struct {
	mu         sync.Mutex
	clock      contract.Clock
	validUntil map[domain.ActorID]time.Time
}

func NewCooldownTracker(clock contract.Clock) *CooldownTracker {
	return &CooldownTracker{
		clock:      clock,
		validUntil: make(map[domain.ActorID]time.Time),
	}
}

// Start puts the actor on cooldown for d. A non-positive duration clears any existing entry.
func (c *CooldownTracker) Start(id domain.ActorID, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d <= 0 {
		delete(c.validUntil, id)
		return
	}
	c.validUntil[id] = c.clock.Now().Add(d)
}

// Check reports whether the actor is still on cooldown and the whole seconds left, rounded up.
func (c *CooldownTracker) Check(id domain.ActorID) (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	until, ok := c.validUntil[id]
	if !ok {
		return false, 0
	}
	remaining := until.Sub(c.clock.Now())
	if remaining <= 0 {
		delete(c.validUntil, id)
		return false, 0
	}
	return true, domain.CeilSeconds(remaining)
}

func (c *CooldownTracker) Prune(id domain.ActorID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.validUntil, id)
}

func (c *CooldownTracker) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.validUntil)
}

func (c *CooldownTracker) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.validUntil)
}
