// Package inmem provides in-process implementations of siteaudit services.
package inmem

import (
	"container/list"
	"context"
	"sync"

	"github.com/fwojciec/siteaudit"
)

// DefaultCacheCapacity is the number of reports kept before the oldest is
// evicted.
const DefaultCacheCapacity = 50

// Ensure ReportCache implements siteaudit.ReportCache.
var _ siteaudit.ReportCache = (*ReportCache)(nil)

// ReportCache is a bounded report cache that evicts in insertion order.
// It is safe for concurrent use.
type ReportCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // of string ids, oldest at the front
	entries  map[string]cacheEntry
}

type cacheEntry struct {
	report *siteaudit.SiteAuditReport
	elem   *list.Element
}

// NewReportCache returns a cache holding at most capacity reports.
// A capacity below 1 uses DefaultCacheCapacity.
func NewReportCache(capacity int) *ReportCache {
	if capacity < 1 {
		capacity = DefaultCacheCapacity
	}
	return &ReportCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]cacheEntry),
	}
}

// Put stores report under id. Replacing an entry keeps its original
// insertion position.
func (c *ReportCache) Put(_ context.Context, id string, report *siteaudit.SiteAuditReport) error {
	if id == "" {
		return siteaudit.Errorf(siteaudit.EINVALID, "cache key required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[id]; ok {
		e.report = report
		c.entries[id] = e
		return nil
	}

	c.entries[id] = cacheEntry{report: report, elem: c.order.PushBack(id)}
	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(string))
	}
	return nil
}

// Get returns the report stored under id.
func (c *ReportCache) Get(_ context.Context, id string) (*siteaudit.SiteAuditReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, siteaudit.Errorf(siteaudit.ENOTFOUND, "report %s not cached", id)
	}
	return e.report, nil
}

// Len returns the number of cached reports.
func (c *ReportCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
