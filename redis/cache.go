// Package redis provides a Redis-backed report cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/siteaudit"
	goredis "github.com/redis/go-redis/v9"
)

// Cache defaults.
const (
	DefaultPrefix = "siteaudit:report:"
	DefaultTTL    = 24 * time.Hour
)

// Ensure ReportCache implements siteaudit.ReportCache.
var _ siteaudit.ReportCache = (*ReportCache)(nil)

// ReportCache stores reports as JSON values with a TTL.
type ReportCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewReportCache initializes a Redis-backed ReportCache.
// A zero ttl uses DefaultTTL.
func NewReportCache(addr, prefix string, ttl time.Duration) *ReportCache {
	return NewReportCacheWithClient(goredis.NewClient(&goredis.Options{Addr: addr}), prefix, ttl)
}

// NewReportCacheWithClient wraps an existing client.
func NewReportCacheWithClient(client *goredis.Client, prefix string, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReportCache{client: client, prefix: prefix, ttl: ttl}
}

// Ping checks that the server is reachable.
func (c *ReportCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (c *ReportCache) Close() error {
	return c.client.Close()
}

// Put writes the report to Redis.
func (c *ReportCache) Put(ctx context.Context, id string, report *siteaudit.SiteAuditReport) error {
	if id == "" {
		return siteaudit.Errorf(siteaudit.EINVALID, "cache key required")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+id, payload, c.ttl).Err()
}

// Get reads the report from Redis.
func (c *ReportCache) Get(ctx context.Context, id string) (*siteaudit.SiteAuditReport, error) {
	val, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, siteaudit.Errorf(siteaudit.ENOTFOUND, "report %s not cached", id)
		}
		return nil, err
	}

	var report siteaudit.SiteAuditReport
	if err := json.Unmarshal(val, &report); err != nil {
		return nil, fmt.Errorf("decode cached report %s: %w", id, err)
	}
	return &report, nil
}
