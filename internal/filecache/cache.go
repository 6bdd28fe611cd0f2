// Package filecache provides an in-memory cache of remote file content,
// bounded by total bytes, entry count, and per-entry TTL. It exists purely to
// keep repeated analyses of the same revision from hammering the repository
// host; losing an entry is never a correctness problem.
package filecache

import (
	"container/list"
	"sync"
	"time"
)

const (
	// DefaultMaxBytes is the default total content budget (50 MB).
	DefaultMaxBytes = 50 * 1024 * 1024
	// DefaultMaxEntries is the default entry-count budget.
	DefaultMaxEntries = 1000
	// DefaultTTL is the default per-entry time to live.
	DefaultTTL = 30 * time.Minute

	// evictTargetFraction is how far below MaxBytes a byte-pressure
	// eviction drains the cache before inserting.
	evictTargetFraction = 0.8
	// oversizeFraction caps a single entry at this share of MaxBytes;
	// larger content is silently not cached.
	oversizeFraction = 0.1
)

// Key identifies cached file content. All three axes participate, so the
// same path at two revisions never collides.
type Key struct {
	Repo     string
	Path     string
	Revision string
}

type entry struct {
	key        Key
	content    string
	size       int64
	insertedAt time.Time
	elem       *list.Element
}

// Options configures a Cache. Zero fields fall back to defaults.
type Options struct {
	MaxBytes   int64
	MaxEntries int
	TTL        time.Duration

	// Now overrides the timestamp source, for deterministic TTL tests.
	Now func() time.Time
}

// Stats is a point-in-time snapshot of cache accounting.
type Stats struct {
	Entries    int     `json:"entries"`
	TotalBytes int64   `json:"totalBytes"`
	Hits       uint64  `json:"hits"`
	Misses     uint64  `json:"misses"`
	HitRate    float64 `json:"hitRate"`
	MissRate   float64 `json:"missRate"`
}

// Cache is a byte/count/TTL-bounded in-memory file cache. It is safe for
// concurrent use; no operation returns an error.
type Cache struct {
	mu         sync.Mutex
	maxBytes   int64
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	entries    map[Key]*entry
	order      *list.List // front = oldest insertion
	totalBytes int64
	hits       uint64
	misses     uint64
}

// New creates a cache with the given options.
func New(opts Options) *Cache {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		maxBytes:   opts.MaxBytes,
		maxEntries: opts.MaxEntries,
		ttl:        opts.TTL,
		now:        opts.Now,
		entries:    make(map[Key]*entry),
		order:      list.New(),
	}
}

// Get returns cached content for (repo, path, revision). An entry past its
// TTL is deleted and reported as a miss. Hit/miss counters are updated.
func (c *Cache) Get(repo, path, revision string) (string, bool) {
	key := Key{Repo: repo, Path: path, Revision: revision}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}
	if c.expired(e) {
		c.removeEntry(e)
		c.misses++
		return "", false
	}

	c.hits++
	return e.content, true
}

// Set stores content for (repo, path, revision). Content larger than 10% of
// the byte budget is silently not cached. Insertion evicts oldest entries
// first: by count until below the entry budget, then by bytes until the
// projected total fits within 80% of the byte budget.
func (c *Cache) Set(repo, path, revision, content string) {
	size := int64(len(content))
	if size > int64(float64(c.maxBytes)*oversizeFraction) {
		return
	}

	key := Key{Repo: repo, Path: path, Revision: revision}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Replace an existing entry rather than double-count it.
	if old, ok := c.entries[key]; ok {
		c.removeEntry(old)
	}

	for len(c.entries) >= c.maxEntries {
		if !c.evictOldest() {
			break
		}
	}

	if c.totalBytes+size > c.maxBytes {
		target := int64(float64(c.maxBytes) * evictTargetFraction)
		for c.totalBytes+size > target {
			if !c.evictOldest() {
				break
			}
		}
	}

	e := &entry{
		key:        key,
		content:    content,
		size:       size,
		insertedAt: c.now(),
	}
	e.elem = c.order.PushBack(e)
	c.entries[key] = e
	c.totalBytes += size
}

// Has reports whether an unexpired entry exists, without touching the
// hit/miss counters.
func (c *Cache) Has(repo, path, revision string) bool {
	key := Key{Repo: repo, Path: path, Revision: revision}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.expired(e) {
		c.removeEntry(e)
		return false
	}
	return true
}

// Remove deletes an entry, reporting whether one existed.
func (c *Cache) Remove(repo, path, revision string) bool {
	key := Key{Repo: repo, Path: path, Revision: revision}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeEntry(e)
	return true
}

// Clear drops every entry. Counters are preserved.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*entry)
	c.order.Init()
	c.totalBytes = 0
}

// ClearExpired bulk-deletes all TTL-expired entries without affecting the
// hit/miss counters. It returns the number of entries removed.
func (c *Cache) ClearExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		e := elem.Value.(*entry)
		if c.expired(e) {
			c.removeEntry(e)
			removed++
		}
		elem = next
	}
	return removed
}

// Stats returns a snapshot of cache accounting. Rates are 0 when no requests
// have occurred.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Entries:    len(c.entries),
		TotalBytes: c.totalBytes,
		Hits:       c.hits,
		Misses:     c.misses,
	}
	total := c.hits + c.misses
	if total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
		s.MissRate = float64(c.misses) / float64(total)
	}
	return s
}

// expired and removeEntry must be called with c.mu held.

func (c *Cache) expired(e *entry) bool {
	return c.now().Sub(e.insertedAt) > c.ttl
}

func (c *Cache) removeEntry(e *entry) {
	delete(c.entries, e.key)
	c.order.Remove(e.elem)
	c.totalBytes -= e.size
}

func (c *Cache) evictOldest() bool {
	front := c.order.Front()
	if front == nil {
		return false
	}
	c.removeEntry(front.Value.(*entry))
	return true
}
