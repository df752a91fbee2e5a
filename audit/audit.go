// Package audit orchestrates site-wide audits: it crawls a site, audits each
// discovered page with retries and pacing, and aggregates the outcomes into
// a single report.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/siteaudit"
	"github.com/fwojciec/siteaudit/crawl"
	"golang.org/x/sync/errgroup"
)

// Orchestration defaults.
const (
	DefaultAuditTimeout = 90 * time.Second
	MaxConcurrency      = 4
)

var _ siteaudit.SiteAuditor = (*Auditor)(nil)

// Auditor runs site-wide and single-page audits.
type Auditor struct {
	Crawler     siteaudit.Crawler
	PageAuditor siteaudit.PageAuditor

	// Limiter paces page audits per host. Nil disables pacing.
	Limiter siteaudit.DomainLimiter

	Retry crawl.RetryPolicy

	// Concurrency is the number of pages audited at once, capped at
	// MaxConcurrency. Values below 2 audit pages sequentially.
	Concurrency int

	// AuditTimeout bounds each audit attempt. Zero means no bound.
	AuditTimeout time.Duration

	// AllowUnreachableSeed audits a site even when no discovered page
	// could be fetched during the crawl.
	AllowUnreachableSeed bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewAuditor returns an Auditor with the default pacing, retry policy and
// timeout.
func NewAuditor(crawler siteaudit.Crawler, pageAuditor siteaudit.PageAuditor) *Auditor {
	return &Auditor{
		Crawler:      crawler,
		PageAuditor:  pageAuditor,
		Limiter:      crawl.NewDomainLimiter(crawl.DefaultAuditInterval),
		Retry:        crawl.DefaultRetryPolicy(),
		Concurrency:  1,
		AuditTimeout: DefaultAuditTimeout,
		Now:          time.Now,
	}
}

// outcome is the result of processing one page. A page with neither a
// result nor an error was skipped.
type outcome struct {
	result *siteaudit.PageAuditResult
	err    *siteaudit.AuditError
}

// AuditSite crawls the site at seedURL and audits every discovered page.
//
// Individual page failures are recorded in the report and never fail the
// run. If ctx is canceled, no further pages are started, pages in flight
// are allowed to finish, and a partial report with status cancelled is
// returned without error.
func (a *Auditor) AuditSite(ctx context.Context, seedURL string, opts siteaudit.AuditOptions, progress siteaudit.ProgressFunc) (*siteaudit.SiteAuditReport, error) {
	if opts.MaxPages == 0 {
		opts.MaxPages = siteaudit.DefaultMaxPages
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	seed, err := siteaudit.NormalizeSeedURL(seedURL)
	if err != nil {
		return nil, err
	}
	notify := newNotifier(progress)

	crawled, err := a.Crawler.Crawl(ctx, seed, opts.MaxPages)
	if err != nil {
		if ctx.Err() == nil || crawled == nil {
			return nil, err
		}
		// Canceled while crawling: nothing is audited.
		notify.emit(siteaudit.ProgressEvent{Type: siteaudit.ProgressCrawled, Total: len(crawled.URLs)})
		return a.assemble(seed, opts, crawled.URLs, make([]outcome, len(crawled.URLs)), true, notify), nil
	}

	urls := crawled.URLs
	notify.emit(siteaudit.ProgressEvent{Type: siteaudit.ProgressCrawled, Total: len(urls)})

	if len(urls) == 0 {
		return nil, siteaudit.Errorf(siteaudit.ENOPAGES, "No pages found to audit at %s.", seed)
	}
	if crawled.Reachable() == 0 && !a.AllowUnreachableSeed {
		return nil, siteaudit.Errorf(siteaudit.ENOPAGES, "No reachable pages found at %s.", seed)
	}

	outcomes := a.auditAll(ctx, siteaudit.Hostname(seed), urls, notify)
	return a.assemble(seed, opts, urls, outcomes, false, notify), nil
}

// AuditPage audits a single page with the retry policy.
func (a *Auditor) AuditPage(ctx context.Context, url string) (*siteaudit.PageAuditResult, error) {
	u, err := siteaudit.NormalizeSeedURL(url)
	if err != nil {
		return nil, err
	}

	var result *siteaudit.PageAuditResult
	err = a.Retry.Do(ctx, u, func(ctx context.Context) error {
		r, err := a.attempt(ctx, u)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// auditAll audits urls in order with at most Concurrency pages in flight.
// Outcomes are indexed by crawl position.
func (a *Auditor) auditAll(ctx context.Context, host string, urls []string, notify *notifier) []outcome {
	outcomes := make([]outcome, len(urls))
	notify.total = len(urls)

	var g errgroup.Group
	g.SetLimit(min(max(a.Concurrency, 1), MaxConcurrency))

	for i, url := range urls {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = a.auditOne(ctx, host, url, notify)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// auditOne paces, audits and retries a single page. Retries are paced
// like first attempts.
func (a *Auditor) auditOne(ctx context.Context, host, url string, notify *notifier) outcome {
	if a.Limiter != nil {
		if err := a.Limiter.Wait(ctx, host); err != nil {
			return outcome{}
		}
	} else if ctx.Err() != nil {
		return outcome{}
	}
	notify.emit(siteaudit.ProgressEvent{Type: siteaudit.ProgressStarted, URL: url})

	policy := a.Retry
	onRetry := policy.OnRetry
	policy.OnRetry = func(url string, attempt int, err error) {
		notify.emit(siteaudit.ProgressEvent{Type: siteaudit.ProgressRetrying, URL: url, Error: errorText(err)})
		if onRetry != nil {
			onRetry(url, attempt, err)
		}
	}

	var result *siteaudit.PageAuditResult
	attempts := 0
	err := policy.Do(ctx, url, func(ctx context.Context) error {
		attempts++
		if attempts > 1 && a.Limiter != nil {
			if err := a.Limiter.Wait(ctx, host); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
		}
		r, err := a.attempt(ctx, url)
		result = r
		return err
	})

	switch {
	case err == nil:
		notify.finish(siteaudit.ProgressEvent{Type: siteaudit.ProgressCompleted, URL: url, Scores: &result.Scores})
		return outcome{result: result}
	case ctx.Err() != nil && err == ctx.Err():
		// Canceled while backing off before the next attempt.
		return outcome{}
	default:
		auditErr := &siteaudit.AuditError{URL: url, Error: errorText(err), Timestamp: a.now().UTC()}
		notify.finish(siteaudit.ProgressEvent{Type: siteaudit.ProgressFailed, URL: url, Error: auditErr.Error})
		return outcome{err: auditErr}
	}
}

// attempt runs a single audit under AuditTimeout. The attempt is detached
// from the cancellation of ctx so that an audit in flight can complete.
func (a *Auditor) attempt(ctx context.Context, url string) (*siteaudit.PageAuditResult, error) {
	actx := context.WithoutCancel(ctx)
	if a.AuditTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(actx, a.AuditTimeout)
		defer cancel()
	}

	type response struct {
		result *siteaudit.PageAuditResult
		err    error
	}
	done := make(chan response, 1)
	go func() {
		r, err := a.PageAuditor.AuditPage(actx, url)
		done <- response{r, err}
	}()

	select {
	case resp := <-done:
		if resp.err != nil {
			if errors.Is(actx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("audit timed out after %s: %w", a.AuditTimeout, resp.err)
			}
			return nil, resp.err
		}
		if resp.result == nil {
			return nil, errors.New("auditor returned no result")
		}
		if err := resp.result.Scores.Validate(); err != nil {
			return nil, err
		}
		return resp.result, nil
	case <-actx.Done():
		return nil, fmt.Errorf("audit timed out after %s", a.AuditTimeout)
	}
}

// assemble builds the report from per-page outcomes in crawl order.
func (a *Auditor) assemble(seed string, opts siteaudit.AuditOptions, urls []string, outcomes []outcome, crawlCanceled bool, notify *notifier) *siteaudit.SiteAuditReport {
	results := []siteaudit.PageAuditResult{}
	auditErrors := []siteaudit.AuditError{}
	skipped := 0
	for _, o := range outcomes {
		switch {
		case o.result != nil:
			results = append(results, *o.result)
		case o.err != nil:
			auditErrors = append(auditErrors, *o.err)
		default:
			skipped++
		}
	}

	status := siteaudit.StatusCompleted
	if crawlCanceled || skipped > 0 {
		status = siteaudit.StatusCancelled
	}

	report := &siteaudit.SiteAuditReport{
		Summary:      siteaudit.Summarize(results, auditErrors),
		AuditResults: results,
		Errors:       auditErrors,
		Metadata: siteaudit.Metadata{
			StartURL:             seed,
			TotalPagesDiscovered: len(urls),
			TotalPagesAudited:    len(results),
			TotalErrors:          len(auditErrors),
			TotalPagesSkipped:    skipped,
			Status:               status,
			AuditTimestamp:       a.now().UTC(),
			Options:              opts,
		},
	}

	notify.emit(siteaudit.ProgressEvent{
		Type:      siteaudit.ProgressFinished,
		Completed: len(results) + len(auditErrors),
		Total:     len(urls),
	})
	return report
}

func (a *Auditor) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// errorText returns the message of an application error, or the error text.
func errorText(err error) string {
	var e *siteaudit.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// notifier serializes progress callbacks and tracks completed pages.
type notifier struct {
	mu        sync.Mutex
	fn        siteaudit.ProgressFunc
	completed int
	total     int
}

func newNotifier(fn siteaudit.ProgressFunc) *notifier {
	return &notifier{fn: fn}
}

// emit reports an event with the current counts.
func (n *notifier) emit(event siteaudit.ProgressEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.send(event)
}

// finish counts a page as done and reports event.
func (n *notifier) finish(event siteaudit.ProgressEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed++
	n.send(event)
}

// send must be called with mu held.
func (n *notifier) send(event siteaudit.ProgressEvent) {
	if n.fn == nil {
		return
	}
	if event.Completed == 0 {
		event.Completed = n.completed
	}
	if event.Total == 0 {
		event.Total = n.total
	}
	n.fn(event)
}
