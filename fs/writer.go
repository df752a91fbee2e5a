// Package fs provides file-based export of site audit reports.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/siteaudit"
)

// ReportFilename returns the export file name for a report of startURL
// produced at t: audit-result-<host with dots as dashes>-<YYYY-MM-DD>.json.
func ReportFilename(startURL string, t time.Time) (string, error) {
	host := siteaudit.Hostname(startURL)
	if host == "" {
		return "", siteaudit.Errorf(siteaudit.EINVALID, "report start URL %q has no host", startURL)
	}
	return "audit-result-" + strings.ReplaceAll(host, ".", "-") + "-" + t.UTC().Format("2006-01-02") + ".json", nil
}

// Ensure ReportWriter implements siteaudit.ReportWriter at compile time.
var _ siteaudit.ReportWriter = (*ReportWriter)(nil)

// ReportWriter writes reports as indented JSON files to a directory.
type ReportWriter struct {
	baseDir string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewReportWriter creates a new ReportWriter that writes to the given base directory.
func NewReportWriter(baseDir string) *ReportWriter {
	return &ReportWriter{baseDir: baseDir, Now: time.Now}
}

// WriteReport writes report to disk and returns the file path.
// The file is written to a temporary name and renamed into place, so
// readers never see a partial report. An existing report for the same
// host and day is replaced.
func (w *ReportWriter) WriteReport(ctx context.Context, report *siteaudit.SiteAuditReport) (string, error) {
	if report == nil {
		return "", siteaudit.Errorf(siteaudit.EINVALID, "report required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := ReportFilename(report.Metadata.StartURL, w.Now())
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(w.baseDir, name+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", err
	}

	fullPath := filepath.Join(w.baseDir, name)
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", err
	}
	return fullPath, nil
}
