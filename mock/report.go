package mock

import (
	"context"

	"github.com/fwojciec/siteaudit"
)

var _ siteaudit.ReportService = (*ReportService)(nil)

// ReportService is a mock implementation of siteaudit.ReportService.
type ReportService struct {
	CreateReportFn   func(ctx context.Context, record *siteaudit.ReportRecord) error
	FindReportByIDFn func(ctx context.Context, id string) (*siteaudit.ReportRecord, error)
	FindReportsFn    func(ctx context.Context, filter siteaudit.ReportFilter) ([]*siteaudit.ReportRecord, error)
	DeleteReportFn   func(ctx context.Context, id string) error
}

func (s *ReportService) CreateReport(ctx context.Context, record *siteaudit.ReportRecord) error {
	return s.CreateReportFn(ctx, record)
}

func (s *ReportService) FindReportByID(ctx context.Context, id string) (*siteaudit.ReportRecord, error) {
	return s.FindReportByIDFn(ctx, id)
}

func (s *ReportService) FindReports(ctx context.Context, filter siteaudit.ReportFilter) ([]*siteaudit.ReportRecord, error) {
	return s.FindReportsFn(ctx, filter)
}

func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	return s.DeleteReportFn(ctx, id)
}

var _ siteaudit.ReportCache = (*ReportCache)(nil)

// ReportCache is a mock implementation of siteaudit.ReportCache.
type ReportCache struct {
	PutFn func(ctx context.Context, id string, report *siteaudit.SiteAuditReport) error
	GetFn func(ctx context.Context, id string) (*siteaudit.SiteAuditReport, error)
}

func (c *ReportCache) Put(ctx context.Context, id string, report *siteaudit.SiteAuditReport) error {
	return c.PutFn(ctx, id, report)
}

func (c *ReportCache) Get(ctx context.Context, id string) (*siteaudit.SiteAuditReport, error) {
	return c.GetFn(ctx, id)
}
