package gallery

import (
	"sync"

	"github.com/metget/met-browser/internal/model"
)

// Cache maps object IDs to fully fetched artwork records for the life of
// the process. Entries are never evicted or invalidated: a record's
// content for a given ID never changes, so concurrent duplicate stores
// are harmless and last write wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[int]*model.Artwork
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[int]*model.Artwork)}
}

// Get returns the cached artwork for the given ID, or false on miss.
func (c *Cache) Get(id int) (*model.Artwork, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.entries[id]
	return a, ok
}

// Put stores an artwork under its own object ID.
func (c *Cache) Put(a *model.Artwork) {
	if a == nil {
		return
	}
	c.mu.Lock()
	c.entries[a.ObjectID] = a
	c.mu.Unlock()
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
