package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/siteaudit"
	"golang.org/x/time/rate"
)

var _ siteaudit.DomainLimiter = (*DomainLimiter)(nil)

// Default pacing between requests to the same host.
const (
	DefaultCrawlInterval = 500 * time.Millisecond
	DefaultAuditInterval = time.Second
)

// DomainLimiter spaces requests to each host at least a fixed interval
// apart. Hosts are paced independently and the first request to a host
// never waits.
type DomainLimiter struct {
	interval time.Duration

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// NewDomainLimiter returns a DomainLimiter with the given spacing.
// A zero interval disables pacing.
func NewDomainLimiter(interval time.Duration) *DomainLimiter {
	return &DomainLimiter{
		interval: interval,
		hosts:    make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to host may proceed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	if d.interval <= 0 {
		return ctx.Err()
	}
	return d.limiter(host).Wait(ctx)
}

func (d *DomainLimiter) limiter(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.hosts[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(d.interval), 1)
		d.hosts[host] = l
	}
	return l
}
