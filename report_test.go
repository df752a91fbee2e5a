package siteaudit_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fwojciec/siteaudit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(url string, perf, a11y, seo int, severities ...siteaudit.Severity) siteaudit.PageAuditResult {
	r := siteaudit.PageAuditResult{
		URL:    url,
		Scores: siteaudit.Scores{Performance: perf, Accessibility: a11y, SEO: seo},
	}
	for _, s := range severities {
		r.Issues = append(r.Issues, siteaudit.Issue{Severity: s, Category: siteaudit.CategorySEO})
	}
	return r
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		s := siteaudit.Summarize(nil, nil)

		assert.Equal(t, siteaudit.Scores{}, s.AverageScores)
		assert.Equal(t, siteaudit.IssueCounts{}, s.TotalIssues)
		assert.Zero(t, s.PageCount)
		assert.Nil(t, s.BestPerformingPage)
		assert.Nil(t, s.WorstPerformingPage)
	})

	t.Run("errors only", func(t *testing.T) {
		t.Parallel()

		s := siteaudit.Summarize(nil, []siteaudit.AuditError{{URL: "https://a.com/", Error: "boom"}})

		assert.Zero(t, s.PageCount)
		assert.Nil(t, s.BestPerformingPage)
	})

	t.Run("averages best and worst", func(t *testing.T) {
		t.Parallel()

		results := []siteaudit.PageAuditResult{
			result("https://a.com/", 90, 80, 70, siteaudit.SeverityCritical, siteaudit.SeverityMinor),
			result("https://a.com/b", 60, 50, 40, siteaudit.SeverityModerate),
		}

		s := siteaudit.Summarize(results, nil)

		assert.Equal(t, siteaudit.Scores{Performance: 75, Accessibility: 65, SEO: 55}, s.AverageScores)
		assert.Equal(t, siteaudit.IssueCounts{Critical: 1, Moderate: 1, Minor: 1}, s.TotalIssues)
		assert.Equal(t, 2, s.PageCount)
		require.NotNil(t, s.BestPerformingPage)
		require.NotNil(t, s.WorstPerformingPage)
		assert.Equal(t, "https://a.com/", s.BestPerformingPage.URL)
		assert.Equal(t, "https://a.com/b", s.WorstPerformingPage.URL)
	})

	t.Run("averages round to nearest", func(t *testing.T) {
		t.Parallel()

		results := []siteaudit.PageAuditResult{
			result("https://a.com/1", 1, 0, 2),
			result("https://a.com/2", 2, 0, 2),
			result("https://a.com/3", 2, 1, 3),
		}

		s := siteaudit.Summarize(results, nil)

		// 5/3 = 1.67, 1/3 = 0.33, 7/3 = 2.33
		assert.Equal(t, siteaudit.Scores{Performance: 2, Accessibility: 0, SEO: 2}, s.AverageScores)
	})

	t.Run("first page wins ties", func(t *testing.T) {
		t.Parallel()

		results := []siteaudit.PageAuditResult{
			result("https://a.com/1", 50, 50, 50),
			result("https://a.com/2", 60, 40, 50),
			result("https://a.com/3", 50, 50, 50),
		}

		s := siteaudit.Summarize(results, nil)

		assert.Equal(t, "https://a.com/1", s.BestPerformingPage.URL)
		assert.Equal(t, "https://a.com/1", s.WorstPerformingPage.URL)
	})

	t.Run("single page is best and worst", func(t *testing.T) {
		t.Parallel()

		s := siteaudit.Summarize([]siteaudit.PageAuditResult{result("https://a.com/", 10, 20, 30)}, nil)

		assert.Equal(t, s.BestPerformingPage, s.WorstPerformingPage)
		assert.Equal(t, siteaudit.Scores{Performance: 10, Accessibility: 20, SEO: 30}, s.AverageScores)
	})

	t.Run("issue counts match page issues", func(t *testing.T) {
		t.Parallel()

		results := []siteaudit.PageAuditResult{
			result("https://a.com/1", 1, 1, 1, siteaudit.SeverityCritical, siteaudit.SeverityCritical),
			result("https://a.com/2", 1, 1, 1, siteaudit.SeverityMinor),
			result("https://a.com/3", 1, 1, 1),
		}

		s := siteaudit.Summarize(results, nil)

		total := 0
		for _, r := range results {
			total += r.TotalIssues()
		}
		assert.Equal(t, total, s.TotalIssues.Total())
	})
}

func TestPageAuditResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	r := result("https://a.com/", 1, 2, 3, siteaudit.SeverityMinor)
	r.Timestamp = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "https://a.com/", got["url"])
	assert.EqualValues(t, 1, got["totalIssues"])
	assert.Contains(t, got, "scores")
	assert.Contains(t, got, "issues")
	assert.Equal(t, "2024-01-02T03:04:05Z", got["timestamp"])
}

func TestPageAuditResult_IssuesByCategory(t *testing.T) {
	t.Parallel()

	r := siteaudit.PageAuditResult{Issues: []siteaudit.Issue{
		{Type: "a", Category: siteaudit.CategorySEO},
		{Type: "b", Category: siteaudit.CategoryAccessibility},
		{Type: "c", Category: siteaudit.CategorySEO},
	}}

	got := r.IssuesByCategory(siteaudit.CategorySEO)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Type)
	assert.Equal(t, "c", got[1].Type)
}
