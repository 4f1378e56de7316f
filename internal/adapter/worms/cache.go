package worms

import (
	"context"
	"sync"

	"github.com/couchcryptid/dwc-align/internal/domain"
	"github.com/couchcryptid/dwc-align/internal/observability"
)

// CachedResolver wraps a NameResolver with an in-memory LRU cache keyed by
// scientific name. Only matched names are cached, so a name the authority
// did not know is retried on the next run.
type CachedResolver struct {
	inner   domain.NameResolver
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedResolver creates a cache decorator around a resolver.
func NewCachedResolver(inner domain.NameResolver, maxEntries int, metrics *observability.Metrics) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, names []string) (map[string]domain.TaxonMatch, error) {
	matches := make(map[string]domain.TaxonMatch, len(names))
	var misses []string

	for _, name := range names {
		if m, ok := c.cache.get(name); ok {
			c.metrics.ResolverCache.WithLabelValues("memory", "hit").Inc()
			matches[name] = m
			continue
		}
		c.metrics.ResolverCache.WithLabelValues("memory", "miss").Inc()
		misses = append(misses, name)
	}

	if len(misses) == 0 {
		return matches, nil
	}

	resolved, err := c.inner.Resolve(ctx, misses)
	if err != nil {
		return nil, err
	}
	for name, m := range resolved {
		c.cache.put(name, m)
		matches[name] = m
	}
	return matches, nil
}

// lruCache is a simple thread-safe LRU cache for taxon matches.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.TaxonMatch
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.TaxonMatch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.TaxonMatch{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.TaxonMatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
