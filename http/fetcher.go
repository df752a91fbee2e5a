// Package http provides HTTP-based implementations of siteaudit.Fetcher and
// siteaudit.PageLoader for sites that don't require JavaScript rendering.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/fwojciec/siteaudit"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies the auditor to the sites it visits.
const DefaultUserAgent = "Mozilla/5.0 (compatible; SiteAudit/1.0)"

// DefaultMaxRedirects is the number of redirects followed per request.
const DefaultMaxRedirects = 5

// DefaultMaxBodySize is the largest response body read, 10 MiB.
const DefaultMaxBodySize = 10 << 20

// Ensure Fetcher implements the domain interfaces at compile time.
var (
	_ siteaudit.Fetcher    = (*Fetcher)(nil)
	_ siteaudit.PageLoader = (*Fetcher)(nil)
)

// Fetcher retrieves HTML content from URLs using HTTP requests.
// Unlike rod.Loader, this does not execute JavaScript and is suitable
// for static sites only.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxRedirects int
	maxBodySize  int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRedirects sets how many redirects are followed before failing.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		f.maxRedirects = n
	}
}

// WithMaxBodySize sets the largest response body read. Larger pages fail.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		userAgent:    DefaultUserAgent,
		maxRedirects: DefaultMaxRedirects,
		maxBodySize:  DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) > f.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", f.maxRedirects)
			}
			return nil
		},
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
// Non-2xx responses and non-HTML content types are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	if !isHTML(resp) {
		return "", fmt.Errorf("unexpected content type %q for %s", resp.Header.Get("Content-Type"), url)
	}

	body, err := f.readBody(resp, url)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// Load retrieves the page for auditing. Unlike Fetch, client error statuses
// are returned as snapshots so they can be reported as audit findings.
// Server errors fail the load.
func (f *Fetcher) Load(ctx context.Context, url string) (*siteaudit.PageSnapshot, error) {
	start := time.Now()
	resp, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	if !isHTML(resp) {
		return nil, fmt.Errorf("unexpected content type %q for %s", resp.Header.Get("Content-Type"), url)
	}

	body, err := f.readBody(resp, url)
	if err != nil {
		return nil, err
	}

	return &siteaudit.PageSnapshot{
		URL:        url,
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		LoadTime:   elapsed,
		Bytes:      len(body),
	}, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, siteaudit.Errorf(siteaudit.EINVALID, "invalid URL %q", url)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return resp, nil
}

// isHTML reports whether the response declares an HTML content type.
// A missing content type is accepted.
// readBody reads at most maxBodySize bytes of the response body.
func (f *Fetcher) readBody(resp *http.Response, url string) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("page %s exceeds %d bytes", url, f.maxBodySize)
	}
	return body, nil
}

func isHTML(resp *http.Response) bool {
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
