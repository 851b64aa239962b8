package cache

// Cache is a generic memo cache with an optional soft limit.
// A softLimit of 0 means unlimited.
type Cache[K comparable, V any] struct {
	entries   map[K]*node[K, V]
	order     recency[K, V]
	softLimit int
	onEvict   func(K, V)
	retain    func(K, V) bool

	hits   uint64
	misses uint64
}

// New creates a new cache with the given soft limit.
func New[K comparable, V any](softLimit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*node[K, V]),
		softLimit: softLimit,
	}
}

// OnEvict registers fn to be called for every entry dropped by the soft
// limit, Delete or Clear.
func (c *Cache[K, V]) OnEvict(fn func(K, V)) {
	c.onEvict = fn
}

// Retain registers fn to report entries the soft limit must not evict.
// Retained entries may keep the cache above its limit.
func (c *Cache[K, V]) Retain(fn func(K, V) bool) {
	c.retain = fn
}

// Get retrieves a value from the cache.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	n, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.touch(n)
	return n.value, true
}

// Set stores a value, replacing any previous value for key.
func (c *Cache[K, V]) Set(key K, value V) {
	if n, ok := c.entries[key]; ok {
		n.value = value
		c.order.touch(n)
		return
	}
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.order.pushFront(n)
	c.trim()
}

// GetOrCreate returns the cached value or stores and returns create().
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create()
	c.Set(key, v)
	return v
}

// Delete removes key. It reports whether the key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.drop(n)
	return true
}

// Clear removes all entries, calling the eviction callback for each.
func (c *Cache[K, V]) Clear() {
	for c.order.tail != nil {
		c.drop(c.order.tail)
	}
}

// Range calls fn for every entry from most to least recently used.
// fn must not modify the cache.
func (c *Cache[K, V]) Range(fn func(K, V) bool) {
	for n := c.order.head; n != nil; n = n.next {
		if !fn(n.key, n.value) {
			return
		}
	}
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	s := Stats{
		Len:      len(c.entries),
		Capacity: c.softLimit,
		Hits:     c.hits,
		Misses:   c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

func (c *Cache[K, V]) drop(n *node[K, V]) {
	c.order.unlink(n)
	delete(c.entries, n.key)
	if c.onEvict != nil {
		c.onEvict(n.key, n.value)
	}
}

// trim evicts least recently used entries down to three quarters of the
// soft limit. The most recent entry and retained entries are kept.
func (c *Cache[K, V]) trim() {
	if c.softLimit <= 0 || len(c.entries) <= c.softLimit {
		return
	}
	target := max(c.softLimit*3/4, 1)
	for n := c.order.tail; n != nil && n != c.order.head && len(c.entries) > target; {
		prev := n.prev
		if c.retain == nil || !c.retain(n.key, n.value) {
			c.drop(n)
		}
		n = prev
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the soft limit, 0 if unlimited.
	Capacity int
	// Hits is the number of successful lookups.
	Hits uint64
	// Misses is the number of failed lookups.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 before the first lookup.
	HitRate float64
}
