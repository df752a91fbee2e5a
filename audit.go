package siteaudit

import (
	"context"
	"encoding/json"
	"time"
)

// Category groups issues by the part of the audit that produced them.
type Category string

// Audit categories.
const (
	CategoryPerformance   Category = "Performance"
	CategoryAccessibility Category = "Accessibility"
	CategorySEO           Category = "SEO"
)

// Severity ranks an issue by its impact on the audit score.
type Severity string

// Severity levels, most severe first.
const (
	SeverityCritical Severity = "Critical"
	SeverityModerate Severity = "Moderate"
	SeverityMinor    Severity = "Minor"
)

// SeverityForScore maps a rule score in the range 0..1 to a severity.
func SeverityForScore(score float64) Severity {
	switch {
	case score < 0.5:
		return SeverityCritical
	case score < 0.9:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}

// ElementRef points at a page element an issue applies to.
type ElementRef struct {
	Element string `json:"element"`
	Line    int    `json:"line,omitempty"` // 1-based, approximate; 0 if unknown
	Details string `json:"details,omitempty"`
}

// Issue is a single audit finding. Issues are produced by a PageAuditor and
// passed through the rest of the pipeline unchanged.
type Issue struct {
	Type         string       `json:"type"`
	Category     Category     `json:"category"`
	Severity     Severity     `json:"severity"`
	Description  string       `json:"description"`
	Suggestion   string       `json:"suggestion,omitempty"`
	RuleID       string       `json:"ruleId,omitempty"`
	WCAGCriteria string       `json:"wcagCriteria,omitempty"`
	Elements     []ElementRef `json:"elements"`
}

// Scores holds the three category scores of a page, each in 0..100.
type Scores struct {
	Performance   int `json:"performance"`
	Accessibility int `json:"accessibility"`
	SEO           int `json:"seo"`
}

// Validate returns an error if any score is outside 0..100.
func (s Scores) Validate() error {
	for _, c := range []struct {
		name  string
		value int
	}{
		{"performance", s.Performance},
		{"accessibility", s.Accessibility},
		{"seo", s.SEO},
	} {
		if c.value < 0 || c.value > 100 {
			return Errorf(EINVALID, "%s score %d out of range", c.name, c.value)
		}
	}
	return nil
}

// Mean returns the arithmetic mean of the three scores.
func (s Scores) Mean() float64 {
	return float64(s.Performance+s.Accessibility+s.SEO) / 3
}

// PageAuditResult is the outcome of auditing one page.
type PageAuditResult struct {
	URL       string    `json:"url"`
	Scores    Scores    `json:"scores"`
	Issues    []Issue   `json:"issues"`
	Timestamp time.Time `json:"timestamp"`
}

// TotalIssues returns the number of issues found on the page.
func (r PageAuditResult) TotalIssues() int {
	return len(r.Issues)
}

// MeanScore returns the mean of the page's three scores.
func (r PageAuditResult) MeanScore() float64 {
	return r.Scores.Mean()
}

// IssuesByCategory returns the page's issues belonging to category.
func (r PageAuditResult) IssuesByCategory(category Category) []Issue {
	var issues []Issue
	for _, issue := range r.Issues {
		if issue.Category == category {
			issues = append(issues, issue)
		}
	}
	return issues
}

// MarshalJSON adds the derived totalIssues field.
func (r PageAuditResult) MarshalJSON() ([]byte, error) {
	type result PageAuditResult
	return json.Marshal(struct {
		result
		TotalIssues int `json:"totalIssues"`
	}{result(r), r.TotalIssues()})
}

// AuditError records a page that could not be audited.
type AuditError struct {
	URL       string    `json:"url"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// PageAuditor audits a single page.
// Implementations should honor context cancellation and deadlines; the
// caller treats every returned error as a page failure.
type PageAuditor interface {
	AuditPage(ctx context.Context, url string) (*PageAuditResult, error)
}

// PageSnapshot is a loaded page as seen by an auditor.
type PageSnapshot struct {
	URL        string
	HTML       string
	StatusCode int // 0 if the loader could not determine it
	LoadTime   time.Duration
	Bytes      int
}

// PageLoader loads a page for inspection.
type PageLoader interface {
	// Load navigates to the URL and returns its contents and timings.
	// Returns EPROTOCOL for transport negotiation failures.
	Load(ctx context.Context, url string) (*PageSnapshot, error)
}
