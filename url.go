package siteaudit

import (
	"net/url"
	"regexp"
	"strings"
)

// URLFilter specifies patterns for including/excluding URLs.
type URLFilter struct {
	// Include patterns - if set, only URLs matching at least one pattern are included.
	Include []*regexp.Regexp

	// Exclude patterns - URLs matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []*regexp.Regexp
}

// Match returns true if the URL passes the filter.
// If the filter is nil, all URLs pass.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}

	if len(f.Include) > 0 {
		matched := false
		for _, re := range f.Include {
			if re.MatchString(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, re := range f.Exclude {
		if re.MatchString(url) {
			return false
		}
	}

	return true
}

// defaultExcludePatterns match administrative, auth and cart pages,
// non-page files, and pseudo-protocol links.
var defaultExcludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/wp-admin/`),
	regexp.MustCompile(`/admin/`),
	regexp.MustCompile(`/login`),
	regexp.MustCompile(`/logout`),
	regexp.MustCompile(`/register`),
	regexp.MustCompile(`/cart`),
	regexp.MustCompile(`/checkout`),
	regexp.MustCompile(`/search\?`),
	regexp.MustCompile(`(?i)\.(pdf|doc|docx|xls|xlsx|ppt|pptx|zip|rar|tar|gz)$`),
	regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|svg|ico|webp)$`),
	regexp.MustCompile(`(?i)\.(css|js|json|xml|txt)$`),
	regexp.MustCompile(`mailto:`),
	regexp.MustCompile(`tel:`),
	regexp.MustCompile(`javascript:`),
	regexp.MustCompile(`#$`),
}

// DefaultExclusionFilter returns the filter applied to crawled links.
func DefaultExclusionFilter() *URLFilter {
	return &URLFilter{Exclude: defaultExcludePatterns}
}

// NormalizeSeedURL validates a user-supplied URL and returns it in absolute
// form. A URL without a scheme is assumed to be https.
func NormalizeSeedURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", Errorf(EINVALID, "URL required")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", Errorf(EINVALID, "unsupported URL scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", Errorf(EINVALID, "URL %q has no host", raw)
	}
	return u.String(), nil
}

// Hostname returns the hostname of rawURL, or "" if it cannot be parsed.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
