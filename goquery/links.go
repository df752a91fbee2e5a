// Package goquery implements HTML inspection using goquery: same-host link
// parsing for the crawler and a rule-based page inspector for audits.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/siteaudit"
)

var _ siteaudit.LinkParser = (*LinkParser)(nil)

// LinkParser extracts same-host page links from anchor elements.
type LinkParser struct {
	// Filter drops links after resolution. Nil keeps every link.
	Filter *siteaudit.URLFilter
}

// NewLinkParser returns a LinkParser using the default exclusion filter.
func NewLinkParser() *LinkParser {
	return &LinkParser{Filter: siteaudit.DefaultExclusionFilter()}
}

// ParseLinks returns the http(s) links in html whose hostname equals
// baseHost, resolved against pageURL with fragments removed, in document
// order and without duplicates.
func (p *LinkParser) ParseLinks(html, pageURL, baseHost string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, siteaudit.Errorf(siteaudit.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, siteaudit.Errorf(siteaudit.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]bool)
	links := []string{}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || isNonHTTPLink(href) {
			return
		}

		resolved, ok := resolveLink(base, href, baseHost)
		if !ok {
			return
		}
		if !p.Filter.Match(resolved) || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	return links, nil
}

// resolveLink resolves href against base and returns it without its
// fragment. ok is false for non-http(s) links and links to other hosts.
func resolveLink(base *url.URL, href, baseHost string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Hostname() != baseHost {
		return "", false
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), true
}

// isNonHTTPLink checks for pseudo-protocol links that never resolve to pages.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
