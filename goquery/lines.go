package goquery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	openingTagRe = regexp.MustCompile(`<(\w+)[^>]*>`)
	attrValueRe  = regexp.MustCompile(`\w+=["']([^"']+)["']`)
)

// maxSnippetLen bounds element snippets stored in issues.
const maxSnippetLen = 200

// lineFinder locates elements in the raw page source. Line numbers are
// approximate: they point at the first unused line containing the element's
// opening tag or one of its attribute values.
type lineFinder struct {
	lines []string // lower-cased
	used  map[int]bool
}

func newLineFinder(lowerLines []string) *lineFinder {
	return &lineFinder{lines: lowerLines, used: make(map[int]bool)}
}

// Find returns the 1-based line of snippet, or 0 if it cannot be found.
func (f *lineFinder) Find(snippet string) int {
	for _, term := range searchTerms(snippet) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		for i, line := range f.lines {
			n := i + 1
			if f.used[n] || !strings.Contains(line, term) {
				continue
			}
			f.used[n] = true
			return n
		}
	}
	return 0
}

// searchTerms returns candidate substrings for snippet, most specific first.
func searchTerms(snippet string) []string {
	if !strings.Contains(snippet, "<") || !strings.Contains(snippet, ">") {
		return []string{snippet}
	}

	var terms []string
	m := openingTagRe.FindStringSubmatch(snippet)
	if m != nil {
		terms = append(terms, m[0])
	}
	for _, a := range attrValueRe.FindAllStringSubmatch(snippet, -1) {
		terms = append(terms, a[1])
	}
	if m != nil {
		terms = append(terms, "<"+m[1])
	}
	return terms
}

// snippet renders the opening tag of the first node in sel.
func snippet(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	node := sel.Nodes[0]

	var b strings.Builder
	b.WriteString("<" + node.Data)
	for _, a := range node.Attr {
		fmt.Fprintf(&b, ` %s="%s"`, a.Key, a.Val)
	}
	b.WriteString(">")

	s := b.String()
	if len(s) > maxSnippetLen {
		s = s[:maxSnippetLen-3] + "..."
	}
	return s
}
