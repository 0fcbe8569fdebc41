// Package cache provides an LRU cache with TTL support. Each schema registry
// keeps the compiler's resolved relation hops in one, keyed per model and
// field name.
package cache

import (
	"sync"
	"time"
)

// Cache is a keyed store with optional expiry.
type Cache[V any] interface {
	// Get retrieves a value from the cache
	Get(key string) (V, bool)
	// Set stores a value in the cache with optional TTL
	Set(key string, value V, ttl time.Duration)
	// Clear removes all entries from the cache
	Clear()
	// Len returns the number of entries held, expired ones included
	Len() int
}

// LRUCache implements an LRU cache with TTL support
type LRUCache[V any] struct {
	mu         sync.Mutex
	data       map[string]*cacheNode[V]
	maxSize    int
	defaultTTL time.Duration
	head       *cacheNode[V]
	tail       *cacheNode[V]
}

// cacheNode represents a node in the doubly-linked list for LRU
type cacheNode[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	prev      *cacheNode[V]
	next      *cacheNode[V]
}

// NewLRUCache creates a new LRU cache. A zero defaultTTL means entries never expire.
func NewLRUCache[V any](maxSize int, defaultTTL time.Duration) *LRUCache[V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &LRUCache[V]{
		data:       make(map[string]*cacheNode[V]),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a value from the cache
func (c *LRUCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	node, ok := c.data[key]
	if !ok {
		return zero, false
	}

	if !node.expiresAt.IsZero() && time.Now().After(node.expiresAt) {
		c.removeNode(node)
		return zero, false
	}

	c.moveToFront(node)
	return node.value, true
}

// Set stores a value in the cache
func (c *LRUCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if node, exists := c.data[key]; exists {
		node.value = value
		node.expiresAt = expiresAt
		c.moveToFront(node)
		return
	}

	if len(c.data) >= c.maxSize {
		c.evictLRU()
	}

	node := &cacheNode[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(node)
	c.data[key] = node
}

// Clear removes all entries from the cache
func (c *LRUCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]*cacheNode[V])
	c.head = nil
	c.tail = nil
}

// Len returns the number of entries held.
func (c *LRUCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

func (c *LRUCache[V]) addToFront(node *cacheNode[V]) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *LRUCache[V]) moveToFront(node *cacheNode[V]) {
	if node == c.head {
		return
	}
	c.unlink(node)
	c.addToFront(node)
}

func (c *LRUCache[V]) unlink(node *cacheNode[V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
	node.prev, node.next = nil, nil
}

// removeNode unlinks node and drops it from the index.
func (c *LRUCache[V]) removeNode(node *cacheNode[V]) {
	c.unlink(node)
	delete(c.data, node.key)
}

func (c *LRUCache[V]) evictLRU() {
	if c.tail == nil {
		return
	}
	c.removeNode(c.tail)
}
