package crawl

import (
	"context"
	"fmt"

	"github.com/fwojciec/siteaudit"
)

var _ siteaudit.LinkExtractor = (*PageLinkExtractor)(nil)

// PageLinkExtractor fetches a page and parses its same-host links.
type PageLinkExtractor struct {
	Fetcher siteaudit.Fetcher
	Parser  siteaudit.LinkParser
}

// ExtractLinks returns the links found on pageURL. On failure it returns an
// empty slice and the reason.
func (e *PageLinkExtractor) ExtractLinks(ctx context.Context, pageURL, baseHost string) ([]string, error) {
	html, err := e.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return []string{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	links, err := e.Parser.ParseLinks(html, pageURL, baseHost)
	if err != nil {
		return []string{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	if links == nil {
		links = []string{}
	}
	return links, nil
}
