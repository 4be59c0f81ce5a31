package decoder

import (
	"container/list"
	"sync"
)

type cacheKey struct {
	text        string
	level       int
	fingerprint string
}

type cacheEntry struct {
	key    cacheKey
	tokens []token
}

// tokenCache is a bounded LRU over tokenizer output, keyed by normalized
// text, nesting level, and options fingerprint. The bound matters: keys embed
// the whole input text, so an unbounded map grows with every distinct payload.
type tokenCache struct {
	mu    sync.Mutex
	cap   int
	ll    *list.List
	items map[cacheKey]*list.Element

	hits   uint64
	misses uint64
}

func newTokenCache(capacity int) *tokenCache {
	if capacity <= 0 {
		return nil
	}
	return &tokenCache{
		cap:   capacity,
		ll:    list.New(),
		items: make(map[cacheKey]*list.Element, capacity),
	}
}

func (c *tokenCache) get(key cacheKey) ([]token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.ll.MoveToFront(el)
	c.hits++
	return el.Value.(*cacheEntry).tokens, true
}

func (c *tokenCache) put(key cacheKey, tokens []token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*cacheEntry).tokens = tokens
		return
	}
	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, tokens: tokens})
	for c.ll.Len() > c.cap {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// CacheStats is a point-in-time view of token cache effectiveness.
type CacheStats struct {
	Entries  int    `json:"entries"`
	Capacity int    `json:"capacity"`
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
}

func (c *tokenCache) stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:  c.ll.Len(),
		Capacity: c.cap,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}
