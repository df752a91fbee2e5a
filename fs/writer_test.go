package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/siteaudit"
	"github.com/fwojciec/siteaudit/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)

func TestReportFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "dots become dashes",
			url:  "https://www.example.com/",
			want: "audit-result-www-example-com-2024-03-01.json",
		},
		{
			name: "port and path are dropped",
			url:  "http://localhost:8080/docs/",
			want: "audit-result-localhost-2024-03-01.json",
		},
		{
			name:    "missing host",
			url:     "not a url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.ReportFilename(tt.url, day)

			if tt.wantErr {
				assert.Equal(t, siteaudit.EINVALID, siteaudit.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("uses the UTC date", func(t *testing.T) {
		t.Parallel()

		loc := time.FixedZone("east", 3*60*60)
		got, err := fs.ReportFilename("https://a.com/", time.Date(2024, 3, 2, 1, 0, 0, 0, loc))

		require.NoError(t, err)
		assert.Equal(t, "audit-result-a-com-2024-03-01.json", got)
	})
}

func newReport() *siteaudit.SiteAuditReport {
	return &siteaudit.SiteAuditReport{
		AuditResults: []siteaudit.PageAuditResult{{
			URL:    "https://example.com/",
			Scores: siteaudit.Scores{Performance: 90, Accessibility: 100, SEO: 80},
			Issues: []siteaudit.Issue{},
		}},
		Errors: []siteaudit.AuditError{},
		Metadata: siteaudit.Metadata{
			StartURL:             "https://example.com/",
			TotalPagesDiscovered: 1,
			TotalPagesAudited:    1,
			Status:               siteaudit.StatusCompleted,
		},
	}
}

func TestReportWriter_WriteReport(t *testing.T) {
	t.Parallel()

	t.Run("writes indented JSON and creates directories", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "output", "reports")
		w := fs.NewReportWriter(dir)
		w.Now = func() time.Time { return day }

		path, err := w.WriteReport(context.Background(), newReport())

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "audit-result-example-com-2024-03-01.json"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "\n  \"summary\": {")

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		results := decoded["auditResults"].([]any)
		require.Len(t, results, 1)
		assert.Equal(t, float64(0), results[0].(map[string]any)["totalIssues"])
	})

	t.Run("replaces a report from the same day", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := fs.NewReportWriter(dir)
		w.Now = func() time.Time { return day }

		first := newReport()
		_, err := w.WriteReport(context.Background(), first)
		require.NoError(t, err)

		second := newReport()
		second.Metadata.TotalPagesDiscovered = 7
		path, err := w.WriteReport(context.Background(), second)
		require.NoError(t, err)

		var got siteaudit.SiteAuditReport
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, 7, got.Metadata.TotalPagesDiscovered)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary files should not remain")
	})

	t.Run("rejects nil report", func(t *testing.T) {
		t.Parallel()

		w := fs.NewReportWriter(t.TempDir())

		_, err := w.WriteReport(context.Background(), nil)

		assert.Equal(t, siteaudit.EINVALID, siteaudit.ErrorCode(err))
	})

	t.Run("honors canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		dir := t.TempDir()

		_, err := fs.NewReportWriter(dir).WriteReport(ctx, newReport())

		assert.ErrorIs(t, err, context.Canceled)
		entries, _ := os.ReadDir(dir)
		assert.Empty(t, entries)
	})
}
