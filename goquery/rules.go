package goquery

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// page is a parsed snapshot under inspection.
type page struct {
	url        *url.URL
	doc        *goquery.Document
	statusCode int
	loadTime   time.Duration
	bytes      int
}

// offender is an element that failed a rule.
type offender struct {
	sel     *goquery.Selection // nil for document-level findings
	element string             // used when sel is nil
	details string
}

// finding is the outcome of a rule: a score in 0..1 and the offending
// elements.
type finding struct {
	score     float64
	offenders []offender
}

func pass() finding { return finding{score: 1} }

// fail returns a zero-score finding for a document-level failure.
func fail(element, details string) finding {
	return finding{offenders: []offender{{element: element, details: details}}}
}

// rule is a single page check.
type rule struct {
	id          string
	title       string
	description string
	suggestion  string
	check       func(p *page) finding
}

// proportional scores a rule by the share of checked elements that pass.
// A page with nothing to check passes.
func proportional(checked int, offenders []offender) finding {
	if checked == 0 || len(offenders) == 0 {
		return pass()
	}
	return finding{
		score:     1 - float64(len(offenders))/float64(checked),
		offenders: offenders,
	}
}

// linear maps v to 1 at or below good, 0 at or above bad.
func linear(v, good, bad float64) float64 {
	switch {
	case v <= good:
		return 1
	case v >= bad:
		return 0
	default:
		return 1 - (v-good)/(bad-good)
	}
}

var accessibilityRules = []rule{
	{
		id:          "document-title",
		title:       "Document doesn't have a <title> element",
		description: "The title gives screen reader users an overview of the page.",
		suggestion:  "Add a descriptive <title> element to the page head.",
		check:       checkDocumentTitle,
	},
	{
		id:          "html-has-lang",
		title:       "<html> element does not have a [lang] attribute",
		description: "Without a page language, screen readers assume the user's default language.",
		suggestion:  "Add a lang attribute to the <html> element.",
		check:       checkHTMLLang,
	},
	{
		id:          "image-alt",
		title:       "Image elements do not have [alt] attributes",
		description: "Informative images need alternate text; decorative images should use an empty alt attribute.",
		suggestion:  "Add an alt attribute to every <img> element.",
		check:       checkImageAlt,
	},
	{
		id:          "link-name",
		title:       "Links do not have a discernible name",
		description: "Link text that is discernible, unique and focusable improves navigation for screen reader users.",
		suggestion:  "Give every link text content, an aria-label or a title.",
		check:       checkLinkName,
	},
	{
		id:          "button-name",
		title:       "Buttons do not have an accessible name",
		description: "Without an accessible name, screen readers announce buttons as \"button\".",
		suggestion:  "Give every button text content, an aria-label or a title.",
		check:       checkButtonName,
	},
	{
		id:          "label",
		title:       "Form elements do not have associated labels",
		description: "Labels ensure form controls are announced properly by assistive technologies.",
		suggestion:  "Associate a <label> with every form control or add an aria-label.",
		check:       checkFormLabels,
	},
	{
		id:          "frame-title",
		title:       "<frame> or <iframe> elements do not have a title",
		description: "Screen reader users rely on frame titles to describe the contents of frames.",
		suggestion:  "Add a title attribute to every frame.",
		check:       checkFrameTitle,
	},
	{
		id:          "meta-viewport",
		title:       "[user-scalable=\"no\"] is used or [maximum-scale] is less than 5",
		description: "Disabling zooming is problematic for users with low vision.",
		suggestion:  "Remove user-scalable=no and allow a maximum-scale of at least 5.",
		check:       checkViewportZoom,
	},
}

var seoRules = []rule{
	{
		id:          "document-title",
		title:       "Document doesn't have a <title> element",
		description: "The title is the first line of a search result.",
		suggestion:  "Add a concise, descriptive <title> element.",
		check:       checkDocumentTitle,
	},
	{
		id:          "meta-description",
		title:       "Document does not have a meta description",
		description: "Meta descriptions may be included in search results to summarize page content.",
		suggestion:  "Add a <meta name=\"description\"> element with a concise summary.",
		check:       checkMetaDescription,
	},
	{
		id:          "http-status-code",
		title:       "Page has unsuccessful HTTP status code",
		description: "Pages with unsuccessful HTTP status codes may not be indexed properly.",
		suggestion:  "Make sure the page returns a 2xx status code.",
		check:       checkStatusCode,
	},
	{
		id:          "link-text",
		title:       "Links do not have descriptive text",
		description: "Descriptive link text helps search engines understand your content.",
		suggestion:  "Replace generic link text such as \"click here\" with a description of the target.",
		check:       checkLinkText,
	},
	{
		id:          "crawlable-anchors",
		title:       "Links are not crawlable",
		description: "Search engines may use href attributes on links to crawl websites.",
		suggestion:  "Use real URLs in the href attribute of every link.",
		check:       checkCrawlableAnchors,
	},
	{
		id:          "is-crawlable",
		title:       "Page is blocked from indexing",
		description: "Search engines are unable to include pages in results if they don't have permission to crawl them.",
		suggestion:  "Remove noindex from robots meta tags on pages that should be indexed.",
		check:       checkIsCrawlable,
	},
	{
		id:          "image-alt",
		title:       "Image elements do not have [alt] attributes",
		description: "Alternate text helps search engines understand image content.",
		suggestion:  "Add an alt attribute to every <img> element.",
		check:       checkImageAlt,
	},
	{
		id:          "canonical",
		title:       "Document does not have a valid rel=canonical",
		description: "Canonical links suggest which URL should be shown in search results.",
		suggestion:  "Provide a single canonical link pointing at an absolute URL on this site.",
		check:       checkCanonical,
	},
}

var performanceRules = []rule{
	{
		id:          "server-response-time",
		title:       "Reduce initial server response time",
		description: "Keep the server response time for the main document short because all other requests depend on it.",
		suggestion:  "Reduce server processing time, use caching, or serve the page from a CDN.",
		check:       checkServerResponseTime,
	},
	{
		id:          "total-byte-weight",
		title:       "Avoid enormous network payloads",
		description: "Large network payloads cost users real money and are highly correlated with long load times.",
		suggestion:  "Reduce the size of the page and the resources it loads.",
		check:       checkTotalByteWeight,
	},
	{
		id:          "render-blocking-resources",
		title:       "Eliminate render-blocking resources",
		description: "Resources are blocking the first paint of your page.",
		suggestion:  "Inline critical CSS and JavaScript and defer non-critical resources.",
		check:       checkRenderBlocking,
	},
	{
		id:          "dom-size",
		title:       "Avoid an excessive DOM size",
		description: "A large DOM increases memory usage, causes longer style calculations and produces costly layout reflows.",
		suggestion:  "Reduce the number of DOM elements on the page.",
		check:       checkDOMSize,
	},
}

func checkDocumentTitle(p *page) finding {
	if strings.TrimSpace(p.doc.Find("title").First().Text()) == "" {
		return fail("<title>", "The page has no title or the title is empty.")
	}
	return pass()
}

func checkHTMLLang(p *page) finding {
	html := p.doc.Find("html").First()
	if strings.TrimSpace(html.AttrOr("lang", "")) == "" {
		return finding{offenders: []offender{{sel: html, details: "The <html> element has no lang attribute."}}}
	}
	return pass()
}

func checkImageAlt(p *page) finding {
	imgs := p.doc.Find("img")
	var offenders []offender
	imgs.Each(func(_ int, sel *goquery.Selection) {
		if _, ok := sel.Attr("alt"); !ok {
			offenders = append(offenders, offender{sel: sel, details: "Element has no alt attribute."})
		}
	})
	return proportional(imgs.Length(), offenders)
}

func checkLinkName(p *page) finding {
	links := p.doc.Find("a[href]")
	var offenders []offender
	links.Each(func(_ int, sel *goquery.Selection) {
		if accessibleName(sel) == "" {
			offenders = append(offenders, offender{sel: sel, details: "Link has no discernible text."})
		}
	})
	return proportional(links.Length(), offenders)
}

func checkButtonName(p *page) finding {
	buttons := p.doc.Find(`button, input[type="button"], input[type="submit"], input[type="reset"]`)
	var offenders []offender
	buttons.Each(func(_ int, sel *goquery.Selection) {
		name := accessibleName(sel)
		if name == "" && goquery.NodeName(sel) == "input" {
			name = strings.TrimSpace(sel.AttrOr("value", ""))
			if name == "" && sel.AttrOr("type", "") != "button" {
				// Submit and reset inputs have a default label.
				name = sel.AttrOr("type", "")
			}
		}
		if name == "" {
			offenders = append(offenders, offender{sel: sel, details: "Button has no accessible name."})
		}
	})
	return proportional(buttons.Length(), offenders)
}

func checkFormLabels(p *page) finding {
	labelled := make(map[string]bool)
	p.doc.Find("label[for]").Each(func(_ int, sel *goquery.Selection) {
		labelled[sel.AttrOr("for", "")] = true
	})

	controls := p.doc.Find("input, select, textarea").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		switch strings.ToLower(sel.AttrOr("type", "")) {
		case "hidden", "submit", "reset", "button", "image":
			return false
		}
		return true
	})

	var offenders []offender
	controls.Each(func(_ int, sel *goquery.Selection) {
		if id, ok := sel.Attr("id"); ok && labelled[id] {
			return
		}
		if sel.ParentsFiltered("label").Length() > 0 {
			return
		}
		for _, attr := range []string{"aria-label", "aria-labelledby", "title"} {
			if strings.TrimSpace(sel.AttrOr(attr, "")) != "" {
				return
			}
		}
		offenders = append(offenders, offender{sel: sel, details: "Form element has no associated label."})
	})
	return proportional(controls.Length(), offenders)
}

func checkFrameTitle(p *page) finding {
	frames := p.doc.Find("iframe, frame")
	var offenders []offender
	frames.Each(func(_ int, sel *goquery.Selection) {
		if strings.TrimSpace(sel.AttrOr("title", "")) == "" {
			offenders = append(offenders, offender{sel: sel, details: "Frame has no title."})
		}
	})
	return proportional(frames.Length(), offenders)
}

func checkViewportZoom(p *page) finding {
	meta := p.doc.Find(`meta[name="viewport"]`).First()
	if meta.Length() == 0 {
		return pass()
	}
	for _, part := range strings.Split(strings.ToLower(meta.AttrOr("content", "")), ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "user-scalable":
			if value == "no" || value == "0" {
				return finding{offenders: []offender{{sel: meta, details: "Zooming is disabled."}}}
			}
		case "maximum-scale":
			if scale, err := strconv.ParseFloat(value, 64); err == nil && scale < 5 {
				return finding{offenders: []offender{{sel: meta, details: fmt.Sprintf("maximum-scale is %s.", value)}}}
			}
		}
	}
	return pass()
}

func checkMetaDescription(p *page) finding {
	meta := p.doc.Find(`meta[name="description"]`).First()
	if meta.Length() == 0 {
		return fail(`<meta name="description">`, "The page has no meta description.")
	}
	if strings.TrimSpace(meta.AttrOr("content", "")) == "" {
		return finding{offenders: []offender{{sel: meta, details: "Description text is empty."}}}
	}
	return pass()
}

func checkStatusCode(p *page) finding {
	if p.statusCode >= 400 {
		return fail(p.url.String(), fmt.Sprintf("Page returned status %d.", p.statusCode))
	}
	return pass()
}

// genericLinkText lists link texts that say nothing about the target.
var genericLinkText = map[string]bool{
	"click here":  true,
	"click this":  true,
	"go":          true,
	"here":        true,
	"this":        true,
	"start":       true,
	"right here":  true,
	"more":        true,
	"learn more":  true,
	"read more":   true,
	"continue":    true,
	"link":        true,
	"more info":   true,
	"find out":    true,
	"see more":    true,
	"this page":   true,
	"this link":   true,
	"click":       true,
	"details":     true,
	"information": true,
}

func checkLinkText(p *page) finding {
	links := p.doc.Find("a[href]")
	var offenders []offender
	links.Each(func(_ int, sel *goquery.Selection) {
		text := strings.ToLower(strings.Join(strings.Fields(sel.Text()), " "))
		if genericLinkText[text] {
			offenders = append(offenders, offender{sel: sel, details: fmt.Sprintf("Link text %q is not descriptive.", text)})
		}
	})
	return proportional(links.Length(), offenders)
}

func checkCrawlableAnchors(p *page) finding {
	anchors := p.doc.Find("a")
	var offenders []offender
	anchors.Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		href = strings.ToLower(strings.TrimSpace(href))
		switch {
		case !ok:
			if _, clickable := sel.Attr("onclick"); clickable {
				offenders = append(offenders, offender{sel: sel, details: "Link has a click handler but no href."})
			}
		case strings.HasPrefix(href, "javascript:"):
			offenders = append(offenders, offender{sel: sel, details: "Link uses a javascript: URL."})
		}
	})
	return proportional(anchors.Length(), offenders)
}

func checkIsCrawlable(p *page) finding {
	var blocked *goquery.Selection
	p.doc.Find(`meta[name="robots"], meta[name="googlebot"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		content := strings.ToLower(sel.AttrOr("content", ""))
		if strings.Contains(content, "noindex") || strings.Contains(content, "none") {
			blocked = sel
			return false
		}
		return true
	})
	if blocked != nil {
		return finding{offenders: []offender{{sel: blocked, details: "Robots meta tag blocks indexing."}}}
	}
	return pass()
}

func checkCanonical(p *page) finding {
	links := p.doc.Find(`link[rel="canonical"]`)
	if links.Length() == 0 {
		return pass()
	}

	targets := make(map[string]bool)
	var offenders []offender
	links.Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		u, err := url.Parse(href)
		if href == "" || err != nil {
			offenders = append(offenders, offender{sel: sel, details: "Canonical URL is invalid."})
			return
		}
		u = p.url.ResolveReference(u)
		if u.Hostname() != p.url.Hostname() {
			offenders = append(offenders, offender{sel: sel, details: fmt.Sprintf("Canonical URL points to another host (%s).", u.Hostname())})
			return
		}
		targets[u.String()] = true
	})
	if len(targets) > 1 {
		offenders = append(offenders, offender{element: `<link rel="canonical">`, details: "Multiple conflicting canonical URLs."})
	}
	if len(offenders) > 0 {
		return finding{offenders: offenders}
	}
	return pass()
}

// Performance thresholds.
const (
	goodResponseTime = 600 * time.Millisecond
	badResponseTime  = 3 * time.Second
	goodByteWeight   = 1600 * 1024
	badByteWeight    = 5000 * 1024
	goodDOMSize      = 800
	badDOMSize       = 2000

	// blockingResourcePenalty is the score lost per render-blocking resource.
	blockingResourcePenalty = 0.15
)

func checkServerResponseTime(p *page) finding {
	score := linear(float64(p.loadTime), float64(goodResponseTime), float64(badResponseTime))
	if score == 1 {
		return pass()
	}
	return finding{
		score: score,
		offenders: []offender{{
			element: p.url.String(),
			details: fmt.Sprintf("Root document took %dms.", p.loadTime.Milliseconds()),
		}},
	}
}

func checkTotalByteWeight(p *page) finding {
	score := linear(float64(p.bytes), goodByteWeight, badByteWeight)
	if score == 1 {
		return pass()
	}
	return finding{
		score: score,
		offenders: []offender{{
			element: p.url.String(),
			details: fmt.Sprintf("Total size was %d KiB.", p.bytes/1024),
		}},
	}
}

func checkRenderBlocking(p *page) finding {
	var offenders []offender
	p.doc.Find("head script[src]").Each(func(_ int, sel *goquery.Selection) {
		_, async := sel.Attr("async")
		_, deferred := sel.Attr("defer")
		if async || deferred || sel.AttrOr("type", "") == "module" {
			return
		}
		offenders = append(offenders, offender{sel: sel, details: "Script blocks rendering."})
	})
	p.doc.Find(`head link[rel="stylesheet"]`).Each(func(_ int, sel *goquery.Selection) {
		if media := sel.AttrOr("media", "all"); media != "all" && media != "screen" {
			return
		}
		offenders = append(offenders, offender{sel: sel, details: "Stylesheet blocks rendering."})
	})
	if len(offenders) == 0 {
		return pass()
	}
	return finding{
		score:     max(0, 1-blockingResourcePenalty*float64(len(offenders))),
		offenders: offenders,
	}
}

func checkDOMSize(p *page) finding {
	n := p.doc.Find("*").Length()
	score := linear(float64(n), goodDOMSize, badDOMSize)
	if score == 1 {
		return pass()
	}
	return finding{
		score: score,
		offenders: []offender{{
			element: "<body>",
			details: fmt.Sprintf("Page has %d elements.", n),
		}},
	}
}

// accessibleName approximates the accessible name of an element.
func accessibleName(sel *goquery.Selection) string {
	for _, attr := range []string{"aria-label", "aria-labelledby", "title"} {
		if v := strings.TrimSpace(sel.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	if text := strings.TrimSpace(sel.Text()); text != "" {
		return text
	}
	var alt string
	sel.Find("img[alt]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		alt = strings.TrimSpace(img.AttrOr("alt", ""))
		return alt == ""
	})
	return alt
}
