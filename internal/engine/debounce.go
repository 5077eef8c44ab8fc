package engine

import "sync"

// missCounter tracks consecutive poll cycles in which a bound profile's pid
// was not observed. A single missed cycle can come from enumeration jitter
// or a worker briefly restarting itself, so eviction waits for the counter
// to reach a threshold.
type missCounter struct {
	mu     sync.Mutex
	counts map[Profile]int
}

// Miss increments the counter for p and returns the new count.
func (c *missCounter) Miss(p Profile) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[Profile]int{}
	}
	c.counts[p]++
	return c.counts[p]
}

// Reset clears the counter for p; called whenever p's pid is observed and
// after eviction.
func (c *missCounter) Reset(p Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, p)
}
