package utilities

import "sync"

type counter struct {
	sync.RWMutex
	counts map[string]int
}

// Counter keeps a count of hits per key; the stub service uses it to
// count requests per route
type Counter interface {
	Read(key string) (hitCount int)
	ReadAll() map[string]int
	Increment(key string) (hitCount int)
	Reset()
}

func NewCounter() Counter {
	return &counter{
		counts: make(map[string]int),
	}
}

func (c *counter) Read(key string) int {
	c.RLock()
	defer c.RUnlock()

	return c.counts[key]
}

func (c *counter) ReadAll() map[string]int {
	c.RLock()
	defer c.RUnlock()

	counts := make(map[string]int, len(c.counts))
	for key, value := range c.counts {
		counts[key] = value
	}
	return counts
}

func (c *counter) Reset() {
	c.Lock()
	defer c.Unlock()

	c.counts = make(map[string]int)
}

func (c *counter) Increment(key string) int {
	c.Lock()
	defer c.Unlock()

	c.counts[key]++
	return c.counts[key]
}
