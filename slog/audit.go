package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/siteaudit"
)

// Ensure LoggingPageAuditor implements siteaudit.PageAuditor.
var _ siteaudit.PageAuditor = (*LoggingPageAuditor)(nil)

// LoggingPageAuditor wraps a PageAuditor with debug logging.
type LoggingPageAuditor struct {
	next   siteaudit.PageAuditor
	logger *slog.Logger
}

// NewLoggingPageAuditor creates a new LoggingPageAuditor.
func NewLoggingPageAuditor(next siteaudit.PageAuditor, logger *slog.Logger) *LoggingPageAuditor {
	return &LoggingPageAuditor{next: next, logger: logger}
}

// AuditPage delegates to the wrapped auditor and logs the page scores.
func (a *LoggingPageAuditor) AuditPage(ctx context.Context, url string) (result *siteaudit.PageAuditResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url}
		if result != nil {
			attrs = append(attrs,
				"performance", result.Scores.Performance,
				"accessibility", result.Scores.Accessibility,
				"seo", result.Scores.SEO,
				"issues", result.TotalIssues(),
			)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		a.logger.Info("audit page", attrs...)
	}(time.Now())
	return a.next.AuditPage(ctx, url)
}

// Ensure LoggingPageLoader implements siteaudit.PageLoader.
var _ siteaudit.PageLoader = (*LoggingPageLoader)(nil)

// LoggingPageLoader wraps a PageLoader with debug logging.
type LoggingPageLoader struct {
	next   siteaudit.PageLoader
	logger *slog.Logger
}

// NewLoggingPageLoader creates a new LoggingPageLoader.
func NewLoggingPageLoader(next siteaudit.PageLoader, logger *slog.Logger) *LoggingPageLoader {
	return &LoggingPageLoader{next: next, logger: logger}
}

// Load delegates to the wrapped loader and logs the snapshot size.
func (l *LoggingPageLoader) Load(ctx context.Context, url string) (snap *siteaudit.PageSnapshot, err error) {
	defer func(begin time.Time) {
		var status, size int
		if snap != nil {
			status = snap.StatusCode
			size = snap.Bytes
		}
		l.logger.Info("load",
			"url", url,
			"status", status,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.Load(ctx, url)
}
