// Package cache provides LRU caching for computed table views, keyed by
// dataset hash plus query-state key. Recomputing a view is cheap but not
// free, and users flip between the same handful of query states constantly.
package cache

import (
	"fmt"
	"strings"
	"sync"

	"crateview/app/query"
)

// DefaultMaxSize is the default cache size limit (64MB).
const DefaultMaxSize = 64 * 1024 * 1024

// Logger receives cache diagnostics. The app wires a zap-backed adapter in;
// a nil logger disables diagnostics entirely.
type Logger interface {
	Log(level, message string)
}

// entry is one cached view, threaded onto the recency list.
type entry struct {
	key        string
	view       *query.View
	size       int64
	prev, next *entry
}

// Cache is a size-bounded LRU of computed views. Safe for concurrent use.
type Cache struct {
	mu          sync.Mutex
	entries     map[string]*entry
	head, tail  *entry // sentinels; head.next is most recently used
	maxSize     int64
	currentSize int64
	hits        int64
	misses      int64
	logger      Logger
}

// Stats reports cache occupancy and effectiveness counters.
type Stats struct {
	Entries     int
	CurrentSize int64
	MaxSize     int64
	Hits        int64
	Misses      int64
}

// New creates a cache bounded to maxSize bytes of estimated view data.
func New(maxSize int64) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	head := &entry{}
	tail := &entry{}
	head.next = tail
	tail.prev = head
	return &Cache{
		entries: make(map[string]*entry),
		head:    head,
		tail:    tail,
		maxSize: maxSize,
	}
}

// SetLogger sets the diagnostics logger.
func (c *Cache) SetLogger(l Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

// Get returns the cached view for key and marks it recently used.
func (c *Cache) Get(key string) (*query.View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		c.logf("debug", "[VIEW_CACHE_MISS] %s", key)
		return nil, false
	}

	c.unlink(e)
	c.pushFront(e)
	c.hits++
	c.logf("debug", "[VIEW_CACHE_HIT] %s", key)
	return e.view, true
}

// Store inserts or replaces the view for key, evicting least recently used
// entries until the cache fits its size limit. Views larger than the whole
// cache are not stored.
func (c *Cache) Store(key string, v *query.View) {
	if v == nil {
		return
	}
	size := v.Size()

	c.mu.Lock()
	defer c.mu.Unlock()

	if size > c.maxSize {
		c.logf("warn", "[VIEW_CACHE_SKIP] entry too large (%d bytes): %s", size, key)
		return
	}

	if old, ok := c.entries[key]; ok {
		c.unlink(old)
		c.currentSize -= old.size
		delete(c.entries, key)
	}

	e := &entry{key: key, view: v, size: size}
	c.entries[key] = e
	c.pushFront(e)
	c.currentSize += size

	for c.currentSize > c.maxSize && c.tail.prev != c.head {
		oldest := c.tail.prev
		c.unlink(oldest)
		delete(c.entries, oldest.key)
		c.currentSize -= oldest.size
		c.logf("debug", "[VIEW_CACHE_EVICT] %s (%d bytes)", oldest.key, oldest.size)
	}
}

// InvalidatePrefix drops every entry whose key starts with prefix. Used to
// flush all views for one dataset when its tab closes.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.unlink(e)
			delete(c.entries, key)
			c.currentSize -= e.size
			removed++
		}
	}
	if removed > 0 {
		c.logf("debug", "[VIEW_CACHE_INVALIDATE] %d entries under %s", removed, prefix)
	}
	return removed
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.head.next = c.tail
	c.tail.prev = c.head
	c.currentSize = 0
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:     len(c.entries),
		CurrentSize: c.currentSize,
		MaxSize:     c.maxSize,
		Hits:        c.hits,
		Misses:      c.misses,
	}
}

func (c *Cache) unlink(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (c *Cache) pushFront(e *entry) {
	e.next = c.head.next
	e.prev = c.head
	c.head.next.prev = e
	c.head.next = e
}

func (c *Cache) logf(level, format string, args ...any) {
	if c.logger != nil {
		c.logger.Log(level, fmt.Sprintf(format, args...))
	}
}
