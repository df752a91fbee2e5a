package mock

import (
	"context"

	"github.com/fwojciec/siteaudit"
)

var _ siteaudit.PageAuditor = (*PageAuditor)(nil)

// PageAuditor is a mock implementation of siteaudit.PageAuditor.
type PageAuditor struct {
	AuditPageFn func(ctx context.Context, url string) (*siteaudit.PageAuditResult, error)
}

func (a *PageAuditor) AuditPage(ctx context.Context, url string) (*siteaudit.PageAuditResult, error) {
	return a.AuditPageFn(ctx, url)
}

var _ siteaudit.PageLoader = (*PageLoader)(nil)

// PageLoader is a mock implementation of siteaudit.PageLoader.
type PageLoader struct {
	LoadFn func(ctx context.Context, url string) (*siteaudit.PageSnapshot, error)
}

func (l *PageLoader) Load(ctx context.Context, url string) (*siteaudit.PageSnapshot, error) {
	return l.LoadFn(ctx, url)
}
