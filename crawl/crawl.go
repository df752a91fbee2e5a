// Package crawl provides breadth-first site discovery and the retry and
// pacing primitives shared by crawling and auditing.
package crawl

import (
	"context"
	"net/url"

	"github.com/fwojciec/siteaudit"
)

var _ siteaudit.Crawler = (*Crawler)(nil)

// Frontier configuration for site crawls.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
)

// Crawler discovers same-host pages breadth-first from a seed URL.
type Crawler struct {
	Extractor siteaudit.LinkExtractor

	// Limiter paces link extraction per host. Nil disables pacing.
	Limiter siteaudit.DomainLimiter
}

// NewCrawler returns a Crawler paced at DefaultCrawlInterval per host.
func NewCrawler(extractor siteaudit.LinkExtractor) *Crawler {
	return &Crawler{
		Extractor: extractor,
		Limiter:   NewDomainLimiter(DefaultCrawlInterval),
	}
}

// Crawl visits pages in breadth-first order starting at seedURL until the
// queue is empty or maxPages pages have been discovered.
//
// The seed is always the first discovered URL, even when it cannot be
// fetched. Pages whose links could not be extracted are listed in
// Unreachable and do not stop the crawl.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, maxPages int) (*siteaudit.CrawlResult, error) {
	if maxPages < 1 {
		return nil, siteaudit.Errorf(siteaudit.EINVALID, "max pages must be at least 1")
	}
	seed, err := siteaudit.NormalizeSeedURL(seedURL)
	if err != nil {
		return nil, err
	}
	baseHost := siteaudit.Hostname(seed)

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(seed)

	visited := make(map[string]bool)
	result := &siteaudit.CrawlResult{URLs: []string{}, Unreachable: []string{}}
	defer func() { result.FilterFalsePositives = frontier.FalsePositives() }()

	for len(result.URLs) < maxPages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		page, ok := frontier.Pop()
		if !ok {
			break
		}
		key := visitKey(page)
		if visited[key] {
			continue
		}
		visited[key] = true
		result.URLs = append(result.URLs, page)

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx, baseHost); err != nil {
				return result, err
			}
		}

		links, err := c.Extractor.ExtractLinks(ctx, page, baseHost)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Unreachable = append(result.Unreachable, page)
			continue
		}

		for _, link := range links {
			if siteaudit.Hostname(link) != baseHost || visited[visitKey(link)] {
				continue
			}
			frontier.Push(link)
		}
	}

	return result, nil
}

// visitKey identifies a page for deduplication. An empty path is the root
// path, so "https://a.com" and "https://a.com/" are the same page.
func visitKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path != "" || u.Opaque != "" {
		return rawURL
	}
	u.Path = "/"
	return u.String()
}
