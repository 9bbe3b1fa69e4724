// Package resultcache caches search responses keyed by project root,
// query text, and limit, grounded on the dedup-cache shape built around
// hashicorp/golang-lru/v2 elsewhere in the pack (an LRU cache guarded by
// an outer mutex for compound operations the library itself doesn't
// make atomic, like "invalidate every key for one project").
package resultcache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/greppy/greppy/internal/model"
)

const defaultCapacity = 1000

// Cache holds recent search responses. Get/Add/InvalidateProject all
// take the same mutex so a concurrent invalidation never races with an
// in-flight Add for the project being invalidated.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, model.SearchResponse]
	byRoot  map[string]map[string]struct{} // root -> set of cache keys
}

// New creates a cache holding up to capacity entries. capacity <= 0
// uses the default of 1000.
func New(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	entries, err := lru.New[string, model.SearchResponse](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	return &Cache{entries: entries, byRoot: make(map[string]map[string]struct{})}, nil
}

// Key formats the cache key for one (root, query, limit) tuple, exactly
// the shape the specification's data model names.
func Key(root, query string, limit int) string {
	return fmt.Sprintf("%s:%s:%d", root, query, limit)
}

// Get returns the cached response for key, if present.
func (c *Cache) Get(root, query string, limit int) (model.SearchResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(Key(root, query, limit))
}

// Add stores resp under the key for (root, query, limit), tracking the
// key against root so it can be invalidated in one call later.
func (c *Cache) Add(root, query string, limit int, resp model.SearchResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(root, query, limit)
	c.entries.Add(key, resp)

	keys, ok := c.byRoot[root]
	if !ok {
		keys = make(map[string]struct{})
		c.byRoot[root] = keys
	}
	keys[key] = struct{}{}
}

// InvalidateProject evicts every cached response for root, called after
// any commit to root's index (from the pipeline or the watcher) so a
// stale response is never served again.
func (c *Cache) InvalidateProject(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.byRoot[root] {
		c.entries.Remove(key)
	}
	delete(c.byRoot, root)
}

// Len reports the number of entries currently cached, for diagnostics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}
