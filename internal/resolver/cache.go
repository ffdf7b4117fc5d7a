package resolver

import "sync"

// Cache is the lazily-populated, invalidation-aware path → artifact id
// lookup spec.md §4.E requires: populated on first query and on each
// ingest, with mandatory invalidation on artifact deletion.
type Cache struct {
	mu   sync.RWMutex
	byID map[string]string // repo-relative path -> artifact id
	miss func(path string) (string, bool)
}

// NewCache constructs a Cache whose misses fall through to a slow
// lookup (typically graphstore.Store.GetArtifactByPath).
func NewCache(onMiss func(path string) (string, bool)) *Cache {
	return &Cache{byID: make(map[string]string), miss: onMiss}
}

// Lookup implements resolver.PathLookup.
func (c *Cache) Lookup(path string) (string, bool) {
	c.mu.RLock()
	if id, ok := c.byID[path]; ok {
		c.mu.RUnlock()
		return id, true
	}
	c.mu.RUnlock()

	id, ok := c.miss(path)
	if !ok {
		return "", false
	}

	c.mu.Lock()
	c.byID[path] = id
	c.mu.Unlock()
	return id, true
}

// Put populates the cache eagerly, called on every ingest per spec.md
// §4.E.
func (c *Cache) Put(path, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[path] = id
}

// Invalidate removes path's cache entry, called on artifact deletion.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byID, path)
}

// InvalidateByID removes any cache entry mapping to id. Used when the
// caller knows the id but not the path (e.g. after a content-hash-keyed
// delete).
func (c *Cache) InvalidateByID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, cachedID := range c.byID {
		if cachedID == id {
			delete(c.byID, path)
		}
	}
}
