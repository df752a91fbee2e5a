package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fwojciec/siteaudit"
	"github.com/fwojciec/siteaudit/crawl"
	"github.com/schollz/progressbar/v3"
)

// newProgressPrinter renders site audit progress as a bar on w.
func newProgressPrinter(w io.Writer) siteaudit.ProgressFunc {
	var (
		mu  sync.Mutex
		bar *progressbar.ProgressBar
	)
	return func(event siteaudit.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()

		switch event.Type {
		case siteaudit.ProgressCrawled:
			fmt.Fprintf(w, "  Found %d pages\n", event.Total)
			if event.Total == 0 {
				return
			}
			bar = progressbar.NewOptions(event.Total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetWidth(30),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(false),
				progressbar.OptionSetDescription("Auditing"),
			)
		case siteaudit.ProgressStarted:
			if bar != nil {
				bar.Describe(crawl.TruncateURL(event.URL, 40))
			}
		case siteaudit.ProgressRetrying:
			if bar != nil {
				bar.Describe("retry " + crawl.TruncateURL(event.URL, 34))
			}
		case siteaudit.ProgressCompleted, siteaudit.ProgressFailed:
			if bar != nil {
				_ = bar.Add(1)
			}
		case siteaudit.ProgressFinished:
			if bar != nil {
				bar.Describe("Done")
				_ = bar.Finish()
				fmt.Fprintln(w)
			}
		}
	}
}

// printReport writes a human-readable site report summary.
func printReport(w io.Writer, report *siteaudit.SiteAuditReport) {
	m := report.Metadata
	s := report.Summary

	fmt.Fprintf(w, "\n=== Site audit: %s ===\n", m.StartURL)
	if m.Status == siteaudit.StatusCancelled {
		fmt.Fprintf(w, "Audit cancelled: %d of %d pages skipped\n", m.TotalPagesSkipped, m.TotalPagesDiscovered)
	}
	fmt.Fprintf(w, "Pages audited: %d\n", m.TotalPagesAudited)
	fmt.Fprintf(w, "Pages failed:  %d\n", m.TotalErrors)

	fmt.Fprintln(w, "\nAverage scores:")
	fmt.Fprintf(w, "  Performance:   %d/100\n", s.AverageScores.Performance)
	fmt.Fprintf(w, "  Accessibility: %d/100\n", s.AverageScores.Accessibility)
	fmt.Fprintf(w, "  SEO:           %d/100\n", s.AverageScores.SEO)

	fmt.Fprintln(w, "\nIssues found:")
	fmt.Fprintf(w, "  Critical: %d\n", s.TotalIssues.Critical)
	fmt.Fprintf(w, "  Moderate: %d\n", s.TotalIssues.Moderate)
	fmt.Fprintf(w, "  Minor:    %d\n", s.TotalIssues.Minor)

	if s.BestPerformingPage != nil {
		fmt.Fprintf(w, "\nBest page: %s\n  %s\n", s.BestPerformingPage.URL, formatScores(s.BestPerformingPage.Scores))
	}
	if s.WorstPerformingPage != nil {
		fmt.Fprintf(w, "\nNeeds attention: %s\n  %s\n", s.WorstPerformingPage.URL, formatScores(s.WorstPerformingPage.Scores))
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(w, "\nFailed pages:")
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  %s: %s\n", e.URL, e.Error)
		}
	}
}

// printPage writes a single page result with its issues by category.
func printPage(w io.Writer, result *siteaudit.PageAuditResult) {
	fmt.Fprintf(w, "%s\n", result.URL)
	fmt.Fprintf(w, "  Performance:   %d/100\n", result.Scores.Performance)
	fmt.Fprintf(w, "  Accessibility: %d/100\n", result.Scores.Accessibility)
	fmt.Fprintf(w, "  SEO:           %d/100\n", result.Scores.SEO)
	fmt.Fprintf(w, "  Total issues:  %d\n", result.TotalIssues())

	for _, category := range []siteaudit.Category{
		siteaudit.CategoryPerformance,
		siteaudit.CategoryAccessibility,
		siteaudit.CategorySEO,
	} {
		issues := result.IssuesByCategory(category)
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", category)
		for _, issue := range issues {
			fmt.Fprintf(w, "  [%s] %s\n", issue.Severity, issue.Description)
			if issue.WCAGCriteria != "" {
				fmt.Fprintf(w, "    WCAG %s\n", issue.WCAGCriteria)
			}
			for _, el := range issue.Elements {
				if el.Line > 0 {
					fmt.Fprintf(w, "    line %d: %s\n", el.Line, el.Element)
				} else {
					fmt.Fprintf(w, "    %s\n", el.Element)
				}
			}
		}
	}
}

func formatScores(s siteaudit.Scores) string {
	return fmt.Sprintf("P:%d A:%d S:%d", s.Performance, s.Accessibility, s.SEO)
}

// writeJSON writes v to stdout as indented JSON.
func writeJSON(deps *Dependencies, v any) error {
	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(deps.Stderr, "error: writing JSON: %v\n", err)
		return err
	}
	return nil
}
