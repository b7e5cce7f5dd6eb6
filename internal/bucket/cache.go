// Package bucket finds and caches the per-host payload budget for each
// injection surface.
package bucket

import (
	"sync"

	"github.com/aleister1102/paramseeker/internal/models"
)

type state struct {
	inProgress bool
	done       bool
	size       int
}

// Cache holds one bucket computation per (host, surface). The first caller to
// Begin claims the computation; everyone else skips it and reads the stored
// result after the sizing phase.
type Cache struct {
	mu    sync.Mutex
	hosts map[string]map[models.Surface]*state
}

// NewCache returns an empty cache. Each run owns its own instance.
func NewCache() *Cache {
	return &Cache{hosts: make(map[string]map[models.Surface]*state)}
}

// Begin claims the (netloc, surface) slot. It returns false when another
// caller already claimed or finished it.
func (c *Cache) Begin(netloc string, surface models.Surface) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	bySurface, ok := c.hosts[netloc]
	if !ok {
		bySurface = make(map[models.Surface]*state)
		c.hosts[netloc] = bySurface
	}
	st, ok := bySurface[surface]
	if !ok {
		st = &state{}
		bySurface[surface] = st
	}
	if st.inProgress || st.done {
		return false
	}
	st.inProgress = true
	return true
}

// Store records the computed bucket size. Zero means the search never found
// an accepted sample and the surface is unusable for this host.
func (c *Cache) Store(netloc string, surface models.Surface, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bySurface, ok := c.hosts[netloc]
	if !ok {
		bySurface = make(map[models.Surface]*state)
		c.hosts[netloc] = bySurface
	}
	st, ok := bySurface[surface]
	if !ok {
		st = &state{}
		bySurface[surface] = st
	}
	st.size = size
	st.done = true
	st.inProgress = false
}

// Get returns the stored size for the slot. done is false while the
// computation has not finished.
func (c *Cache) Get(netloc string, surface models.Surface) (size int, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if bySurface, ok := c.hosts[netloc]; ok {
		if st, ok := bySurface[surface]; ok {
			return st.size, st.done
		}
	}
	return 0, false
}
