package search

import (
	"sync"
	"time"

	"github.com/olivierg1729/jobfinder/internal/models"
)

// DefaultTTL is how long an accumulation entry stays valid.
const DefaultTTL = time.Hour

// Clock abstracts time.Now so tests can drive TTL expiry deterministically.
type Clock func() time.Time

// entry is the accumulated state for one query: every offer fetched so
// far, deduplicated, in first-seen fetch order, plus how far into the
// upstream's own pagination we have consumed.
type entry struct {
	offers        []models.Offer
	keys          map[string]struct{}
	lastPage      int
	exhausted     bool
	totalEstimate int
	fetchedAt     time.Time
}

// add appends offers whose identity key has not been seen yet and reports
// how many were new.
func (e *entry) add(offers []models.Offer) int {
	added := 0
	for _, o := range offers {
		if _, dup := e.keys[o.Key]; dup {
			continue
		}
		e.keys[o.Key] = struct{}{}
		e.offers = append(e.offers, o)
		added++
	}
	return added
}

// Cache is the process-wide accumulation store, keyed by the exact query
// string as supplied. Entries are created lazily, extended in place, and
// rebuilt when older than the TTL or when a caller forces a refresh.
//
// A per-query mutex serializes concurrent requests for the same query, so
// two identical searches arriving together cannot double-fetch upstream
// pages or lose each other's updates.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	locks   map[string]*sync.Mutex
	ttl     time.Duration
	now     Clock
}

// NewCache builds a cache with the given TTL and clock. Zero values fall
// back to DefaultTTL and time.Now.
func NewCache(ttl time.Duration, now Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		entries: make(map[string]*entry),
		locks:   make(map[string]*sync.Mutex),
		ttl:     ttl,
		now:     now,
	}
}

// lockQuery acquires the per-query mutex and returns its unlock function.
func (c *Cache) lockQuery(query string) func() {
	c.mu.Lock()
	l, ok := c.locks[query]
	if !ok {
		l = &sync.Mutex{}
		c.locks[query] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// acquire returns the live entry for query, resetting it when missing,
// stale, or when the caller forces a refresh. The per-query lock must be
// held.
func (c *Cache) acquire(query string, force bool) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[query]
	if ok && !force && c.now().Sub(e.fetchedAt) <= c.ttl {
		return e
	}
	e = &entry{
		keys:      make(map[string]struct{}),
		fetchedAt: c.now(),
	}
	c.entries[query] = e
	return e
}

// touch refreshes the entry timestamp after a successful extension.
func (c *Cache) touch(e *entry) {
	e.fetchedAt = c.now()
}

// Clear drops every accumulated entry. Used by tests and operational
// resets; saved searches and seen sets are unaffected.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}
