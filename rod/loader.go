// Package rod implements page loading with headless Chrome via go-rod.
package rod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/siteaudit"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page load.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Loader implements the domain interfaces at compile time.
var _ siteaudit.PageLoader = (*Loader)(nil)

// protocolErrors are navigation failures caused by transport negotiation.
var protocolErrors = []string{
	"ERR_HTTP2_PROTOCOL_ERROR",
	"ERR_SPDY_PROTOCOL_ERROR",
	"Protocol error",
}

// navigationTimingJS reads the navigation and resource timing entries of the
// current document.
const navigationTimingJS = `() => {
	const nav = performance.getEntriesByType('navigation')[0];
	const resources = performance.getEntriesByType('resource');
	let resourceBytes = 0;
	for (const r of resources) resourceBytes += r.transferSize || 0;
	return {
		status: nav ? (nav.responseStatus || 0) : 0,
		responseStart: nav ? nav.responseStart : 0,
		transferSize: (nav ? nav.transferSize || 0 : 0) + resourceBytes,
	};
}`

// navigationTiming is the result of navigationTimingJS.
type navigationTiming struct {
	Status        int     `json:"status"`
	ResponseStart float64 `json:"responseStart"` // milliseconds
	TransferSize  int     `json:"transferSize"`
}

// Loader loads pages in headless Chrome.
// Loader is safe for concurrent use by multiple goroutines.
type Loader struct {
	manager *BrowserManager
	timeout time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithTimeout bounds each page load. Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// NewLoader creates a Loader that opens pages in browsers from manager.
// The Loader takes ownership of manager: Close closes it.
func NewLoader(manager *BrowserManager, opts ...LoaderOption) *Loader {
	l := &Loader{manager: manager, timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load navigates to the URL, waits for the load event and returns the
// rendered HTML with response timings.
func (l *Loader) Load(ctx context.Context, url string) (*siteaudit.PageSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	browser, release, err := l.manager.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	start := time.Now()
	if err := page.Navigate(url); err != nil {
		return nil, navigationError(url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, navigationError(url, err)
	}
	elapsed := time.Since(start)

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("reading HTML of %s: %w", url, err)
	}

	snap := &siteaudit.PageSnapshot{
		URL:      url,
		HTML:     html,
		LoadTime: elapsed,
		Bytes:    len(html),
	}

	timing, err := readTiming(page)
	if err == nil {
		snap.StatusCode = timing.Status
		if timing.ResponseStart > 0 {
			snap.LoadTime = time.Duration(timing.ResponseStart * float64(time.Millisecond))
		}
		if timing.TransferSize > 0 {
			snap.Bytes = timing.TransferSize
		}
	}

	if snap.StatusCode >= 500 {
		return nil, fmt.Errorf("HTTP %d for %s", snap.StatusCode, url)
	}
	return snap, nil
}

// Close releases browser resources.
func (l *Loader) Close() error {
	return l.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (l *Loader) LauncherPID() int {
	return l.manager.LauncherPID()
}

func readTiming(page *rod.Page) (navigationTiming, error) {
	var t navigationTiming
	res, err := page.Eval(navigationTimingJS)
	if err != nil {
		return t, err
	}
	err = res.Value.Unmarshal(&t)
	return t, err
}

// navigationError classifies a navigation failure. Protocol negotiation
// failures are returned as EPROTOCOL; context errors are returned as is.
func navigationError(url string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if IsProtocolError(err) {
		return siteaudit.Errorf(siteaudit.EPROTOCOL, "navigating to %s: %v", url, err)
	}
	return fmt.Errorf("navigating to %s: %w", url, err)
}

// IsProtocolError reports whether err is an HTTP/2 or SPDY negotiation
// failure.
func IsProtocolError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, p := range protocolErrors {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
