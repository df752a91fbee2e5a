package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultMaxPages is the number of pages a browser serves before it is
// replaced with a fresh process.
const DefaultMaxPages = 75

// launchFlags are passed to every Chrome process. HTTP/2 and SPDY are
// disabled because some servers fail protocol negotiation with headless
// Chrome.
var launchFlags = []flags.Flag{
	"disable-http2",
	"disable-spdy",
	"disable-gpu",
	"disable-extensions",
	"disable-dev-shm-usage",
	"disable-background-timer-throttling",
	"disable-renderer-backgrounding",
	"no-first-run",
}

// session is one running Chrome process.
type session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	served   int
	inFlight int
}

func (s *session) close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

// BrowserManager hands out a shared headless browser and replaces it after
// maxPages pages to bound Chrome's memory growth. A browser is only
// replaced once none of its pages are open, so concurrent audits are never
// cut off mid-load.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	maxPages  int
	userAgent string

	mu       sync.Mutex
	current  *session
	retired  []*session
	recycles int
	closed   bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages a browser serves before it is replaced.
func WithMaxPages(n int) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithUserAgent overrides the browser's User-Agent header.
func WithUserAgent(ua string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.userAgent = ua
	}
}

// NewBrowserManager launches headless Chrome. Close must be called to stop
// the browser process.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}

	s, err := bm.launch()
	if err != nil {
		return nil, err
	}
	bm.current = s
	return bm, nil
}

// Acquire returns a browser for loading one page. The caller must call
// release when the page is closed.
func (bm *BrowserManager) Acquire() (browser *rod.Browser, release func(), err error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, fmt.Errorf("browser manager closed")
	}

	if bm.current.served >= bm.maxPages {
		if s, err := bm.launch(); err == nil {
			bm.retire(bm.current)
			bm.current = s
			bm.recycles++
		}
		// On launch failure keep serving from the old browser.
	}

	s := bm.current
	s.served++
	s.inFlight++

	var once sync.Once
	release = func() {
		once.Do(func() { bm.release(s) })
	}
	return s.browser, release, nil
}

// Recycles returns how many times the browser has been replaced.
func (bm *BrowserManager) Recycles() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.recycles
}

// Close stops every browser process. It is safe to call more than once.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true

	var err error
	for _, s := range append(bm.retired, bm.current) {
		if cerr := s.close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	bm.retired = nil
	return err
}

// LauncherPID returns the process ID of the current browser launcher.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.current == nil {
		return 0
	}
	return bm.current.launcher.PID()
}

// retire closes s now if it has no open pages, otherwise once the last one
// is released. Must be called with mu held.
func (bm *BrowserManager) retire(s *session) {
	if s.inFlight == 0 {
		_ = s.close()
		return
	}
	bm.retired = append(bm.retired, s)
}

func (bm *BrowserManager) release(s *session) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	s.inFlight--
	if s.inFlight > 0 || s == bm.current || bm.closed {
		return
	}
	for i, r := range bm.retired {
		if r == s {
			bm.retired = append(bm.retired[:i], bm.retired[i+1:]...)
			_ = s.close()
			return
		}
	}
}

func (bm *BrowserManager) launch() (*session, error) {
	l := launcher.New().Leakless(true).Headless(true)
	for _, flag := range launchFlags {
		l = l.Set(flag)
	}
	if bm.userAgent != "" {
		l = l.Set("user-agent", bm.userAgent)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &session{browser: browser, launcher: l}, nil
}
