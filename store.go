package siteaudit

import (
	"context"
	"time"
)

// ReportRecord is a stored site audit report.
type ReportRecord struct {
	ID           string           `json:"id"`
	StartURL     string           `json:"startUrl"`
	Status       RunStatus        `json:"status"`
	PagesAudited int              `json:"pagesAudited"`
	Errors       int              `json:"errors"`
	ContentHash  string           `json:"contentHash"`
	CreatedAt    time.Time        `json:"createdAt"`
	Report       *SiteAuditReport `json:"report,omitempty"`
}

// Validate returns an error if the record contains invalid fields.
func (r *ReportRecord) Validate() error {
	if r.Report == nil {
		return Errorf(EINVALID, "report required")
	}
	if r.StartURL == "" {
		return Errorf(EINVALID, "report start URL required")
	}
	return nil
}

// NewReportRecord returns a record describing report.
func NewReportRecord(report *SiteAuditReport) *ReportRecord {
	return &ReportRecord{
		StartURL:     report.Metadata.StartURL,
		Status:       report.Metadata.Status,
		PagesAudited: report.Metadata.TotalPagesAudited,
		Errors:       report.Metadata.TotalErrors,
		Report:       report,
	}
}

// ReportService represents a service for managing stored reports.
type ReportService interface {
	// CreateReport stores a new report. The ID, content hash and creation
	// time are set on the record.
	CreateReport(ctx context.Context, record *ReportRecord) error

	// FindReportByID retrieves a report by ID.
	// Returns ENOTFOUND if report does not exist.
	FindReportByID(ctx context.Context, id string) (*ReportRecord, error)

	// FindReports retrieves reports matching the filter, newest first.
	// The Report field of returned records is not populated.
	FindReports(ctx context.Context, filter ReportFilter) ([]*ReportRecord, error)

	// DeleteReport permanently removes a report.
	// Returns ENOTFOUND if report does not exist.
	DeleteReport(ctx context.Context, id string) error
}

// ReportFilter represents a filter for FindReports.
type ReportFilter struct {
	ID       *string `json:"id"`
	StartURL *string `json:"startUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ReportCache holds recently produced reports keyed by report ID.
type ReportCache interface {
	Put(ctx context.Context, id string, report *SiteAuditReport) error

	// Get returns ENOTFOUND on a cache miss.
	Get(ctx context.Context, id string) (*SiteAuditReport, error)
}

// ReportWriter exports a report and returns where it was written.
type ReportWriter interface {
	WriteReport(ctx context.Context, report *SiteAuditReport) (string, error)
}
