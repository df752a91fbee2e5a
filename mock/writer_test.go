package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/siteaudit"
	"github.com/fwojciec/siteaudit/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where ReportWriter is expected
	var _ siteaudit.ReportWriter = &mock.ReportWriter{}
}

func TestReportWriter_WriteReport(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteReportFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *siteaudit.SiteAuditReport
		w := &mock.ReportWriter{
			WriteReportFn: func(_ context.Context, report *siteaudit.SiteAuditReport) (string, error) {
				calledWith = report
				return "/tmp/report.json", nil
			},
		}

		report := &siteaudit.SiteAuditReport{
			Metadata: siteaudit.Metadata{StartURL: "https://example.com/"},
		}

		path, err := w.WriteReport(context.Background(), report)

		require.NoError(t, err)
		assert.Equal(t, "/tmp/report.json", path)
		assert.Equal(t, report, calledWith)
	})
}
