package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/siteaudit"
)

// Ensure LoggingLinkExtractor implements siteaudit.LinkExtractor.
var _ siteaudit.LinkExtractor = (*LoggingLinkExtractor)(nil)

// LoggingLinkExtractor wraps a LinkExtractor with debug logging.
type LoggingLinkExtractor struct {
	next   siteaudit.LinkExtractor
	logger *slog.Logger
}

// NewLoggingLinkExtractor creates a new LoggingLinkExtractor.
func NewLoggingLinkExtractor(next siteaudit.LinkExtractor, logger *slog.Logger) *LoggingLinkExtractor {
	return &LoggingLinkExtractor{next: next, logger: logger}
}

// ExtractLinks delegates to the wrapped extractor and logs the operation.
func (e *LoggingLinkExtractor) ExtractLinks(ctx context.Context, pageURL, baseHost string) (links []string, err error) {
	defer func(begin time.Time) {
		e.logger.Info("extract links",
			"url", pageURL,
			"count", len(links),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractLinks(ctx, pageURL, baseHost)
}

// Ensure LoggingCrawler implements siteaudit.Crawler.
var _ siteaudit.Crawler = (*LoggingCrawler)(nil)

// LoggingCrawler wraps a Crawler with debug logging.
type LoggingCrawler struct {
	next   siteaudit.Crawler
	logger *slog.Logger
}

// NewLoggingCrawler creates a new LoggingCrawler.
func NewLoggingCrawler(next siteaudit.Crawler, logger *slog.Logger) *LoggingCrawler {
	return &LoggingCrawler{next: next, logger: logger}
}

// Crawl delegates to the wrapped crawler and logs the discovered page count.
func (c *LoggingCrawler) Crawl(ctx context.Context, seedURL string, maxPages int) (result *siteaudit.CrawlResult, err error) {
	defer func(begin time.Time) {
		var discovered, unreachable, falsePositives int
		if result != nil {
			discovered = len(result.URLs)
			unreachable = len(result.Unreachable)
			falsePositives = result.FilterFalsePositives
		}
		c.logger.Info("crawl",
			"url", seedURL,
			"max_pages", maxPages,
			"count", discovered,
			"unreachable", unreachable,
			"filter_false_positives", falsePositives,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Crawl(ctx, seedURL, maxPages)
}
