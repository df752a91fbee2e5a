package siteaudit

import "context"

// LinkParser extracts same-host page links from HTML.
type LinkParser interface {
	// ParseLinks returns the absolute, fragment-free links in html that
	// point at baseHost, in order of first occurrence and without
	// duplicates. Relative links are resolved against pageURL.
	ParseLinks(html string, pageURL string, baseHost string) ([]string, error)
}

// LinkExtractor fetches a page and returns the same-host links it contains.
//
// ExtractLinks fails softly: when the page cannot be fetched or parsed the
// result is empty and the error only describes why. Callers must never
// abort a crawl because of it.
type LinkExtractor interface {
	ExtractLinks(ctx context.Context, pageURL string, baseHost string) ([]string, error)
}

// URLFrontier is a FIFO crawl queue with deduplication.
type URLFrontier interface {
	// Push appends a URL to the queue.
	// Returns false if the URL has already been pushed.
	Push(url string) bool

	// Pop removes and returns the oldest queued URL.
	// Returns false if the frontier is empty.
	Pop() (string, bool)

	// Len returns the number of URLs in the queue.
	Len() int

	// Seen returns true if the URL has ever been pushed.
	Seen(url string) bool
}

// DomainLimiter provides per-domain pacing.
type DomainLimiter interface {
	// Wait blocks until the limiter allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// CrawlResult is the outcome of a crawl.
type CrawlResult struct {
	// URLs lists discovered pages in visit order. The seed is first.
	URLs []string

	// Unreachable lists discovered pages whose links could not be extracted.
	Unreachable []string

	// FilterFalsePositives counts dedup lookups the Bloom filter matched
	// but the exact set rejected. A high count means the filter is undersized.
	FilterFalsePositives int
}

// Reachable returns the number of discovered pages that were fetched.
func (r *CrawlResult) Reachable() int {
	return len(r.URLs) - len(r.Unreachable)
}

// Crawler discovers same-host pages starting from a seed URL.
type Crawler interface {
	// Crawl returns at most maxPages pages reachable from seedURL.
	// On cancellation it returns the pages discovered so far together with
	// the context error.
	Crawl(ctx context.Context, seedURL string, maxPages int) (*CrawlResult, error)
}
