// Package cache provides LRU caching for parsed documents.
//
// The extraction service owns one DocumentCache and keys it by the BLAKE3
// hash of the raw source bytes, so the same file content is parsed once per
// process no matter how it is reached. Eviction is least-recently-used with
// an explicit maximum entry count.
package cache

import (
	"container/list"
	"encoding/hex"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/Lectern/core/usj"
)

// DefaultMaxSize is the default entry cap. Parsed books are sizable; keep
// fewer of them.
const DefaultMaxSize = 50

// Stats contains cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

// Key returns the cache key for raw source bytes: the hex BLAKE3 hash.
func Key(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type entry struct {
	key string
	doc *usj.Document
}

// DocumentCache is a thread-safe LRU cache of parsed documents.
type DocumentCache struct {
	mu        sync.Mutex
	maxSize   int
	entries   map[string]*list.Element
	evictList *list.List
	stats     Stats
}

// NewDocumentCache creates a cache holding at most maxSize documents.
// maxSize <= 0 means unbounded.
func NewDocumentCache(maxSize int) *DocumentCache {
	return &DocumentCache{
		maxSize:   maxSize,
		entries:   make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Get retrieves a document by key.
func (c *DocumentCache) Get(key string) (*usj.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.evictList.MoveToFront(ent)
	c.stats.Hits++
	return ent.Value.(*entry).doc, true
}

// Put stores a document under key, evicting the least recently used entry
// when the cache is full.
func (c *DocumentCache) Put(key string, doc *usj.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*entry).doc = doc
		return
	}

	c.entries[key] = c.evictList.PushFront(&entry{key: key, doc: doc})

	if c.maxSize > 0 && c.evictList.Len() > c.maxSize {
		oldest := c.evictList.Back()
		if oldest != nil {
			c.evictList.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
			c.stats.Evictions++
		}
	}
}

// Len returns the number of cached documents.
func (c *DocumentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Stats returns cache statistics.
func (c *DocumentCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.evictList.Len()
	s.MaxSize = c.maxSize
	return s
}
