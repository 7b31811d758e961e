package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/couchcryptid/metar-card-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedFetcher wraps a ReportFetcher with an in-memory LRU whose entries
// expire after a fixed TTL.
type CachedFetcher struct {
	inner   ReportFetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner ReportFetcher, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, clock),
		metrics: metrics,
	}
}

func (c *CachedFetcher) FetchReport(ctx context.Context, code domain.StationCode) (domain.Report, error) {
	if report, ok := c.cache.get(code); ok {
		c.metrics.ReportCache.WithLabelValues("hit").Inc()
		return report, nil
	}
	c.metrics.ReportCache.WithLabelValues("miss").Inc()

	report, err := c.inner.FetchReport(ctx, code)
	if err != nil {
		// Failures are not cached so the next lookup retries the providers.
		return report, err
	}
	c.cache.put(code, report)
	return report, nil
}

// lruCache is a thread-safe LRU cache of reports with per-entry expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[domain.StationCode]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       domain.StationCode
	value     domain.Report
	expiresAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[domain.StationCode]*entry),
	}
}

func (c *lruCache) get(key domain.StationCode) (domain.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Report{}, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.remove(e)
		return domain.Report{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key domain.StationCode, value domain.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
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
	e.prev, e.next = nil, nil
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
