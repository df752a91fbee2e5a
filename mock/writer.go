package mock

import (
	"context"

	"github.com/fwojciec/siteaudit"
)

var _ siteaudit.ReportWriter = (*ReportWriter)(nil)

// ReportWriter is a mock implementation of siteaudit.ReportWriter.
type ReportWriter struct {
	WriteReportFn func(ctx context.Context, report *siteaudit.SiteAuditReport) (string, error)
}

func (w *ReportWriter) WriteReport(ctx context.Context, report *siteaudit.SiteAuditReport) (string, error) {
	return w.WriteReportFn(ctx, report)
}
