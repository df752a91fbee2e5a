package mock

import (
	"context"

	"github.com/fwojciec/siteaudit"
)

var _ siteaudit.LinkParser = (*LinkParser)(nil)

// LinkParser is a mock implementation of siteaudit.LinkParser.
type LinkParser struct {
	ParseLinksFn func(html, pageURL, baseHost string) ([]string, error)
}

func (p *LinkParser) ParseLinks(html, pageURL, baseHost string) ([]string, error) {
	return p.ParseLinksFn(html, pageURL, baseHost)
}

var _ siteaudit.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of siteaudit.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(ctx context.Context, pageURL, baseHost string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(ctx context.Context, pageURL, baseHost string) ([]string, error) {
	return e.ExtractLinksFn(ctx, pageURL, baseHost)
}

var _ siteaudit.Crawler = (*Crawler)(nil)

// Crawler is a mock implementation of siteaudit.Crawler.
type Crawler struct {
	CrawlFn func(ctx context.Context, seedURL string, maxPages int) (*siteaudit.CrawlResult, error)
}

func (c *Crawler) Crawl(ctx context.Context, seedURL string, maxPages int) (*siteaudit.CrawlResult, error) {
	return c.CrawlFn(ctx, seedURL, maxPages)
}
