package mock

import (
	"context"

	"github.com/fwojciec/siteaudit"
)

var _ siteaudit.SiteAuditor = (*SiteAuditor)(nil)

// SiteAuditor is a mock implementation of siteaudit.SiteAuditor.
type SiteAuditor struct {
	AuditSiteFn func(ctx context.Context, seedURL string, opts siteaudit.AuditOptions, progress siteaudit.ProgressFunc) (*siteaudit.SiteAuditReport, error)
	AuditPageFn func(ctx context.Context, url string) (*siteaudit.PageAuditResult, error)
}

func (a *SiteAuditor) AuditSite(ctx context.Context, seedURL string, opts siteaudit.AuditOptions, progress siteaudit.ProgressFunc) (*siteaudit.SiteAuditReport, error) {
	return a.AuditSiteFn(ctx, seedURL, opts, progress)
}

func (a *SiteAuditor) AuditPage(ctx context.Context, url string) (*siteaudit.PageAuditResult, error) {
	return a.AuditPageFn(ctx, url)
}
