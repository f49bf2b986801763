package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a thread-safe LRU cache of byte payloads bounded by entry
// count and total size. Entries optionally expire after a TTL.
type LRUCache struct {
	capacity int
	size     int64
	maxSize  int64 // max size in bytes
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List
	now      func() time.Time
	mu       sync.Mutex

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	key     string
	data    []byte
	expires time.Time
}

// NewLRUCache creates a new LRU cache with the specified capacity and max
// size in bytes. A zero ttl keeps entries until they are evicted.
func NewLRUCache(capacity int, maxSizeBytes int64, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		maxSize:  maxSizeBytes,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get retrieves an item from the cache
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.expired(entry) {
		c.removeElement(elem)
		c.misses++
		return nil, false
	}

	c.order.MoveToFront(elem)
	c.hits++
	return entry.data, true
}

// Set adds or updates an item in the cache
func (c *LRUCache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dataSize := int64(len(data))

	// If single item is larger than max size, don't cache it
	if dataSize > c.maxSize {
		return
	}

	expires := time.Time{}
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	if elem, ok := c.items[key]; ok {
		oldEntry := elem.Value.(*cacheEntry)
		c.size -= int64(len(oldEntry.data))
		oldEntry.data = data
		oldEntry.expires = expires
		c.size += dataSize
		c.order.MoveToFront(elem)
		c.shrink()
		return
	}

	// Evict items until we have space
	for c.order.Len() >= c.capacity || (c.size+dataSize > c.maxSize && c.order.Len() > 0) {
		c.evictOldest()
	}

	entry := &cacheEntry{key: key, data: data, expires: expires}
	elem := c.order.PushFront(entry)
	c.items[key] = elem
	c.size += dataSize
}

// Delete removes an item from the cache
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Clear removes all items from the cache
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.size = 0
}

// Len returns the number of items in the cache
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Size returns the current size in bytes
func (c *LRUCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns hit and miss counters since creation.
func (c *LRUCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *LRUCache) expired(e *cacheEntry) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

// shrink evicts from the back until the byte budget holds again.
func (c *LRUCache) shrink() {
	for c.size > c.maxSize && c.order.Len() > 1 {
		c.evictOldest()
	}
}

func (c *LRUCache) evictOldest() {
	elem := c.order.Back()
	if elem != nil {
		c.removeElement(elem)
	}
}

func (c *LRUCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.order.Remove(elem)
	delete(c.items, entry.key)
	c.size -= int64(len(entry.data))
}
