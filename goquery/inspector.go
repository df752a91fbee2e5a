package goquery

import (
	"context"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/siteaudit"
)

var _ siteaudit.PageAuditor = (*Inspector)(nil)

// Issue thresholds. A rule whose score is below the threshold of its
// category produces an issue.
const (
	issueThreshold            = 1.0
	performanceIssueThreshold = 0.9
)

// Inspector audits pages by loading them and running a fixed rule set over
// the resulting HTML.
type Inspector struct {
	Loader siteaudit.PageLoader

	// Now returns the audit timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewInspector returns an Inspector reading pages from loader.
func NewInspector(loader siteaudit.PageLoader) *Inspector {
	return &Inspector{Loader: loader, Now: time.Now}
}

// AuditPage loads url and inspects it.
func (i *Inspector) AuditPage(ctx context.Context, url string) (*siteaudit.PageAuditResult, error) {
	snap, err := i.Loader.Load(ctx, url)
	if err != nil {
		return nil, err
	}
	return i.Inspect(snap)
}

// Inspect scores a loaded page.
func (i *Inspector) Inspect(snap *siteaudit.PageSnapshot) (*siteaudit.PageAuditResult, error) {
	u, err := url.Parse(snap.URL)
	if err != nil {
		return nil, siteaudit.Errorf(siteaudit.EINVALID, "invalid page URL: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return nil, siteaudit.Errorf(siteaudit.EINVALID, "failed to parse HTML: %v", err)
	}

	p := &page{
		url:        u,
		doc:        doc,
		statusCode: snap.StatusCode,
		loadTime:   snap.LoadTime,
		bytes:      snap.Bytes,
	}
	if p.bytes == 0 {
		p.bytes = len(snap.HTML)
	}
	lines := strings.Split(strings.ToLower(snap.HTML), "\n")

	var issues []siteaudit.Issue
	evaluate := func(category siteaudit.Category, rules []rule, threshold float64) int {
		score, found := evaluateRules(p, lines, category, rules, threshold)
		issues = append(issues, found...)
		return score
	}

	scores := siteaudit.Scores{
		Performance:   evaluate(siteaudit.CategoryPerformance, performanceRules, performanceIssueThreshold),
		Accessibility: evaluate(siteaudit.CategoryAccessibility, accessibilityRules, issueThreshold),
		SEO:           evaluate(siteaudit.CategorySEO, seoRules, issueThreshold),
	}
	if issues == nil {
		issues = []siteaudit.Issue{}
	}

	now := time.Now
	if i.Now != nil {
		now = i.Now
	}

	return &siteaudit.PageAuditResult{
		URL:       snap.URL,
		Scores:    scores,
		Issues:    issues,
		Timestamp: now().UTC(),
	}, nil
}

// evaluateRules runs rules against p and returns the category score, the
// rounded mean of the rule scores scaled to 0..100, and the issues for rules
// scoring below threshold.
func evaluateRules(p *page, lines []string, category siteaudit.Category, rules []rule, threshold float64) (int, []siteaudit.Issue) {
	if len(rules) == 0 {
		return 100, nil
	}

	var sum float64
	var issues []siteaudit.Issue
	for _, r := range rules {
		f := r.check(p)
		sum += f.score
		if f.score >= threshold {
			continue
		}

		issue := siteaudit.Issue{
			Type:        r.title,
			Category:    category,
			Severity:    siteaudit.SeverityForScore(f.score),
			Description: r.description,
			Suggestion:  r.suggestion,
			RuleID:      r.id,
			Elements:    elementRefs(f.offenders, newLineFinder(lines)),
		}
		if _, mapped := wcagCriteria[r.id]; mapped || category == siteaudit.CategoryAccessibility {
			issue.WCAGCriteria = WCAGCriteria(r.id)
		}
		issues = append(issues, issue)
	}

	return int(math.Round(100 * sum / float64(len(rules)))), issues
}

func elementRefs(offenders []offender, lf *lineFinder) []siteaudit.ElementRef {
	refs := make([]siteaudit.ElementRef, 0, len(offenders))
	for _, o := range offenders {
		element := o.element
		if o.sel != nil {
			element = snippet(o.sel)
		}
		refs = append(refs, siteaudit.ElementRef{
			Element: element,
			Line:    lf.Find(element),
			Details: o.details,
		})
	}
	return refs
}
