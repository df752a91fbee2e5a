package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/siteaudit"
	main "github.com/fwojciec/siteaudit/cmd/siteaudit"
	"github.com/fwojciec/siteaudit/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportDeps(reports siteaudit.ReportService, cache siteaudit.ReportCache) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:     context.Background(),
		Stdout:  stdout,
		Stderr:  stderr,
		Reports: reports,
		Cache:   cache,
	}, stdout, stderr
}

func TestReportsListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists reports", func(t *testing.T) {
		t.Parallel()

		var gotFilter siteaudit.ReportFilter
		reports := &mock.ReportService{
			FindReportsFn: func(_ context.Context, filter siteaudit.ReportFilter) ([]*siteaudit.ReportRecord, error) {
				gotFilter = filter
				return []*siteaudit.ReportRecord{
					{ID: "rep-2", StartURL: "https://b.com/", Status: siteaudit.StatusCancelled, PagesAudited: 4, Errors: 1, CreatedAt: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)},
					{ID: "rep-1", StartURL: "https://a.com/", Status: siteaudit.StatusCompleted, PagesAudited: 12, CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
				}, nil
			},
		}
		deps, stdout, _ := reportDeps(reports, nil)

		err := (&main.ReportsListCmd{Limit: 20}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, 20, gotFilter.Limit)
		assert.Nil(t, gotFilter.StartURL)
		out := stdout.String()
		assert.Contains(t, out, "rep-1")
		assert.Contains(t, out, "rep-2")
		assert.Contains(t, out, "https://b.com/")
		assert.Contains(t, out, "cancelled")
		assert.Contains(t, out, " 12 pages")
	})

	t.Run("filters by normalized start URL", func(t *testing.T) {
		t.Parallel()

		var gotFilter siteaudit.ReportFilter
		deps, _, _ := reportDeps(&mock.ReportService{
			FindReportsFn: func(_ context.Context, filter siteaudit.ReportFilter) ([]*siteaudit.ReportRecord, error) {
				gotFilter = filter
				return []*siteaudit.ReportRecord{}, nil
			},
		}, nil)

		err := (&main.ReportsListCmd{URL: "a.com/", Limit: 5}).Run(deps)

		require.NoError(t, err)
		require.NotNil(t, gotFilter.StartURL)
		assert.Equal(t, "https://a.com/", *gotFilter.StartURL)
	})

	t.Run("shows helpful message when no reports exist", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := reportDeps(&mock.ReportService{
			FindReportsFn: func(context.Context, siteaudit.ReportFilter) ([]*siteaudit.ReportRecord, error) {
				return []*siteaudit.ReportRecord{}, nil
			},
		}, nil)

		require.NoError(t, (&main.ReportsListCmd{}).Run(deps))
		assert.Contains(t, stdout.String(), "No reports found")
	})
}

func TestReportsShowCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("serves cached reports without the database", func(t *testing.T) {
		t.Parallel()

		cache := &mock.ReportCache{
			GetFn: func(_ context.Context, id string) (*siteaudit.SiteAuditReport, error) {
				assert.Equal(t, "rep-1", id)
				return sampleReport(), nil
			},
		}
		deps, stdout, _ := reportDeps(&mock.ReportService{}, cache)

		err := (&main.ReportsShowCmd{ID: "rep-1"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "=== Site audit: https://a.com/ ===")
	})

	t.Run("falls back to the database and fills the cache", func(t *testing.T) {
		t.Parallel()

		var cached *siteaudit.SiteAuditReport
		cache := &mock.ReportCache{
			GetFn: func(_ context.Context, id string) (*siteaudit.SiteAuditReport, error) {
				return nil, siteaudit.Errorf(siteaudit.ENOTFOUND, "report %s not cached", id)
			},
			PutFn: func(_ context.Context, _ string, report *siteaudit.SiteAuditReport) error {
				cached = report
				return nil
			},
		}
		reports := &mock.ReportService{
			FindReportByIDFn: func(_ context.Context, id string) (*siteaudit.ReportRecord, error) {
				return &siteaudit.ReportRecord{ID: id, Report: sampleReport()}, nil
			},
		}
		deps, stdout, _ := reportDeps(reports, cache)

		err := (&main.ReportsShowCmd{ID: "rep-1", JSON: true}).Run(deps)

		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Contains(t, stdout.String(), `"startUrl": "https://a.com/"`)
	})

	t.Run("reports unknown ids", func(t *testing.T) {
		t.Parallel()

		cache := &mock.ReportCache{
			GetFn: func(context.Context, string) (*siteaudit.SiteAuditReport, error) {
				return nil, siteaudit.Errorf(siteaudit.ENOTFOUND, "not cached")
			},
		}
		reports := &mock.ReportService{
			FindReportByIDFn: func(context.Context, string) (*siteaudit.ReportRecord, error) {
				return nil, siteaudit.Errorf(siteaudit.ENOTFOUND, "report not found")
			},
		}
		deps, _, stderr := reportDeps(reports, cache)

		err := (&main.ReportsShowCmd{ID: "nope"}).Run(deps)

		assert.Equal(t, siteaudit.ENOTFOUND, siteaudit.ErrorCode(err))
		assert.Contains(t, stderr.String(), "report not found")
	})
}

func TestReportsDeleteCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("requires force", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := reportDeps(&mock.ReportService{}, nil)

		err := (&main.ReportsDeleteCmd{ID: "rep-1"}).Run(deps)

		assert.Equal(t, siteaudit.EINVALID, siteaudit.ErrorCode(err))
		assert.Contains(t, stderr.String(), "--force")
	})

	t.Run("deletes the report", func(t *testing.T) {
		t.Parallel()

		var deleted string
		deps, stdout, _ := reportDeps(&mock.ReportService{
			DeleteReportFn: func(_ context.Context, id string) error {
				deleted = id
				return nil
			},
		}, nil)

		err := (&main.ReportsDeleteCmd{ID: "rep-1", Force: true}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "rep-1", deleted)
		assert.Contains(t, stdout.String(), "Deleted report rep-1")
	})
}
