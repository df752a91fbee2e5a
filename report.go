package siteaudit

import (
	"context"
	"math"
	"time"
)

// Page count limits for a site audit.
const (
	DefaultMaxPages = 50
	MaxPagesLimit   = 100
)

// AuditOptions configures a site audit run.
type AuditOptions struct {
	MaxPages int `json:"maxPages"`
}

// Validate returns an error if the options are out of range.
func (o AuditOptions) Validate() error {
	if o.MaxPages < 1 || o.MaxPages > MaxPagesLimit {
		return Errorf(EINVALID, "max pages must be between 1 and %d", MaxPagesLimit)
	}
	return nil
}

// RunStatus reports how a site audit run ended.
type RunStatus string

// Run statuses.
const (
	StatusCompleted RunStatus = "completed"
	StatusCancelled RunStatus = "cancelled"
)

// PageRef identifies a page in a summary.
type PageRef struct {
	URL    string `json:"url"`
	Scores Scores `json:"scores"`
}

// IssueCounts counts issues by severity.
type IssueCounts struct {
	Critical int `json:"critical"`
	Moderate int `json:"moderate"`
	Minor    int `json:"minor"`
}

// Total returns the number of issues across all severities.
func (c IssueCounts) Total() int {
	return c.Critical + c.Moderate + c.Minor
}

// Summary holds aggregate statistics over a site audit.
type Summary struct {
	AverageScores       Scores      `json:"averageScores"`
	TotalIssues         IssueCounts `json:"totalIssues"`
	PageCount           int         `json:"pageCount"`
	BestPerformingPage  *PageRef    `json:"bestPerformingPage,omitempty"`
	WorstPerformingPage *PageRef    `json:"worstPerformingPage,omitempty"`
}

// Metadata describes a site audit run.
type Metadata struct {
	StartURL             string       `json:"startUrl"`
	TotalPagesDiscovered int          `json:"totalPagesDiscovered"`
	TotalPagesAudited    int          `json:"totalPagesAudited"`
	TotalErrors          int          `json:"totalErrors"`
	TotalPagesSkipped    int          `json:"totalPagesSkipped"`
	Status               RunStatus    `json:"status"`
	AuditTimestamp       time.Time    `json:"auditTimestamp"`
	Options              AuditOptions `json:"options"`
}

// SiteAuditReport is the final output of a site audit.
// Results and errors are listed in crawl order.
type SiteAuditReport struct {
	Summary      Summary           `json:"summary"`
	AuditResults []PageAuditResult `json:"auditResults"`
	Errors       []AuditError      `json:"errors"`
	Metadata     Metadata          `json:"metadata"`
}

// Summarize reduces per-page results into summary statistics.
// It is defined for empty input: averages are zero and no best or worst
// page is reported. The errors are accepted for symmetry with the report
// and do not affect the summary.
//
// Best and worst pages are chosen by the mean of their three scores using
// strict comparisons, so the first page wins ties.
func Summarize(results []PageAuditResult, _ []AuditError) Summary {
	if len(results) == 0 {
		return Summary{}
	}

	var perf, a11y, seo int
	var counts IssueCounts
	best, worst := 0, 0

	for i, r := range results {
		perf += r.Scores.Performance
		a11y += r.Scores.Accessibility
		seo += r.Scores.SEO

		for _, issue := range r.Issues {
			switch issue.Severity {
			case SeverityCritical:
				counts.Critical++
			case SeverityModerate:
				counts.Moderate++
			case SeverityMinor:
				counts.Minor++
			}
		}

		if r.MeanScore() > results[best].MeanScore() {
			best = i
		}
		if r.MeanScore() < results[worst].MeanScore() {
			worst = i
		}
	}

	n := float64(len(results))
	return Summary{
		AverageScores: Scores{
			Performance:   int(math.Round(float64(perf) / n)),
			Accessibility: int(math.Round(float64(a11y) / n)),
			SEO:           int(math.Round(float64(seo) / n)),
		},
		TotalIssues:         counts,
		PageCount:           len(results),
		BestPerformingPage:  &PageRef{URL: results[best].URL, Scores: results[best].Scores},
		WorstPerformingPage: &PageRef{URL: results[worst].URL, Scores: results[worst].Scores},
	}
}

// SiteAuditor runs site-wide and single-page audits.
type SiteAuditor interface {
	// AuditSite crawls the site at seedURL and audits every discovered page.
	// Page failures are recorded in the report. Returns ENOPAGES when the
	// crawl finds nothing to audit. On cancellation a partial report with
	// status cancelled is returned without error.
	AuditSite(ctx context.Context, seedURL string, opts AuditOptions, progress ProgressFunc) (*SiteAuditReport, error)

	// AuditPage audits a single page.
	AuditPage(ctx context.Context, url string) (*PageAuditResult, error)
}
