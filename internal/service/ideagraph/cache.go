package ideagraph

import (
	"context"
	"sync"

	graphSvc "agora/internal/domain/services/ideagraph"
)

// ChildCountCache memoises NumChildren per logical idea id. Entries are
// dropped by its hook whenever a link leaving the idea changes, or when the
// idea itself is deleted, and recomputed lazily on the next read.
//
// Every invalidation bumps epoch. A count read from the store is only
// cached if no invalidation happened since the read began, so a count that
// was stale by the time it arrived is never written back.
type ChildCountCache struct {
	mu     sync.RWMutex
	counts map[string]int
	epoch  uint64
}

// NewChildCountCache creates an empty cache
func NewChildCountCache() *ChildCountCache {
	return &ChildCountCache{counts: map[string]int{}}
}

func (c *ChildCountCache) get(id string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.counts[id]
	return n, ok
}

// generation is taken before reading a count from the store
func (c *ChildCountCache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// setAt caches n unless the cache was invalidated after gen was taken
func (c *ChildCountCache) setAt(id string, n int, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != gen {
		return false
	}
	c.counts[id] = n
	return true
}

// Invalidate drops the cached counts of the given ids
func (c *ChildCountCache) Invalidate(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for _, id := range ids {
		delete(c.counts, id)
	}
}

func (c *ChildCountCache) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.counts = map[string]int{}
}

// Len returns the number of cached entries
func (c *ChildCountCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.counts)
}

// Hook returns the change hook that keeps the cache coherent.
// Deleting an idea changes the count of every parent, which the event does
// not name, so idea deletions flush the whole cache.
func (c *ChildCountCache) Hook() Hook {
	return func(_ context.Context, event graphSvc.ChangeEvent) error {
		switch event.Entity {
		case graphSvc.EntityLink:
			c.Invalidate(event.SourceID, event.PrevSourceID)
		case graphSvc.EntityIdea:
			if event.Kind == graphSvc.ChangeDeleted {
				c.flush()
			}
		}
		return nil
	}
}
