// Package cache provides a thread-safe LRU cache for parsed Molang programs.
//
// Resource packs repeat the same handful of expressions across hundreds of
// entities and animations. With caching enabled the gomolang facade parses
// each distinct source once and hands out the same immutable Program to every
// caller.
//
// Only programs that parsed without diagnostics are stored, so a cached
// Program is always complete.
//
// # Example
//
//	c := cache.New(1024)
//	prog, err := c.GetOrParse("math.cos(q.anim_time * 38)", parse)
package cache

import (
	"container/list"
	"sync"

	"github.com/sandrolain/gomolang/pkg/types"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 256

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	key  string
	prog *types.Program
}

// Cache is a thread-safe LRU (Least Recently Used) cache for parsed programs.
// Once the capacity is reached, the least recently accessed entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, DefaultCapacity is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a program from the cache.
// Returns (prog, true) if found and moves the entry to front (MRU).
// Returns (nil, false) if not present.
func (c *Cache) Get(key string) (*types.Program, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	if !ok {
		c.mu.RUnlock()
		return nil, false
	}
	// Skip the write lock when the entry is already the most recent one.
	if c.ll.Front() == el {
		prog := el.Value.(*entry).prog
		c.mu.RUnlock()
		return prog, true
	}
	c.mu.RUnlock()

	// Promote to front under write lock; re-check in case of concurrent eviction.
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok = c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).prog, true
}

// Set inserts or replaces a program in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(key string, prog *types.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).prog = prog
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry{key: key, prog: prog})
	c.items[key] = el
}

// GetOrParse retrieves the program for key from cache, or calls parse() to
// create it. The result is cached only when parse reports no error; on error
// the partial program is returned together with the error.
func (c *Cache) GetOrParse(key string, parse func() (*types.Program, error)) (*types.Program, error) {
	if prog, ok := c.Get(key); ok {
		return prog, nil
	}
	prog, err := parse()
	if err != nil {
		return prog, err
	}
	c.Set(key, prog)
	return prog, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held for writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
