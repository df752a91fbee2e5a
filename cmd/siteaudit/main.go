package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/siteaudit"
	"github.com/fwojciec/siteaudit/audit"
	"github.com/fwojciec/siteaudit/crawl"
	"github.com/fwojciec/siteaudit/fs"
	"github.com/fwojciec/siteaudit/goquery"
	sahttp "github.com/fwojciec/siteaudit/http"
	"github.com/fwojciec/siteaudit/inmem"
	"github.com/fwojciec/siteaudit/redis"
	"github.com/fwojciec/siteaudit/rod"
	saslog "github.com/fwojciec/siteaudit/slog"
	"github.com/fwojciec/siteaudit/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env file is not an error.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		PrintError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Configuration. Set before calling Run().
	DBPath    string
	RedisAddr string
	CacheTTL  time.Duration

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing. Nil services are built by Run.
	Reports siteaudit.ReportService
	Cache   siteaudit.ReportCache
	Auditor siteaudit.SiteAuditor

	closers []io.Closer
}

// NewMain returns a new instance of Main configured from the environment.
func NewMain() *Main {
	return &Main{
		DBPath:    defaultDBPath(),
		RedisAddr: os.Getenv("SITEAUDIT_REDIS_ADDR"),
		CacheTTL:  envDuration("SITEAUDIT_CACHE_TTL", redis.DefaultTTL),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	m.closers = nil
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("siteaudit"),
		kong.Description("Crawl a website and audit its pages for performance, accessibility and SEO."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'siteaudit --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	logger := newLogger(cli.Verbose, stderr)

	if m.Reports == nil {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set SITEAUDIT_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		m.Reports = sqlite.NewReportService(m.DB)
	}
	deps.Reports = m.Reports

	if m.Cache == nil {
		m.Cache = m.openCache(ctx, stderr)
	}
	deps.Cache = m.Cache

	switch cmd := kongCtx.Command(); {
	case strings.HasPrefix(cmd, "site"):
		if m.Auditor == nil {
			a, err := m.newAuditor(cli.Site.Static, logger, stderr)
			if err != nil {
				return err
			}
			a.Concurrency = cli.Site.Concurrency
			a.AllowUnreachableSeed = cli.Site.AllowUnreachableSeed
			m.Auditor = a
		}
		deps.Writer = fs.NewReportWriter(cli.Site.Output)
	case strings.HasPrefix(cmd, "page"):
		if m.Auditor == nil {
			a, err := m.newAuditor(cli.Page.Static, logger, stderr)
			if err != nil {
				return err
			}
			m.Auditor = a
		}
	}
	deps.Auditor = m.Auditor

	if err := kongCtx.Run(deps); err != nil {
		return &commandError{err: err}
	}
	return nil
}

// commandError is an error a command has already printed to stderr.
type commandError struct {
	err error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

// PrintError prints err unless a command has already reported it.
func PrintError(w io.Writer, err error) {
	var ce *commandError
	if errors.As(err, &ce) {
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// newAuditor wires the crawl and audit stack. Links are always crawled over
// plain HTTP; pages are audited in a headless browser unless static is set.
func (m *Main) newAuditor(static bool, logger *slog.Logger, stderr io.Writer) (*audit.Auditor, error) {
	httpFetcher := sahttp.NewFetcher()
	m.closers = append(m.closers, httpFetcher)

	var loader siteaudit.PageLoader = httpFetcher
	if !static {
		manager, err := rod.NewBrowserManager()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or use --static")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		browserLoader := rod.NewLoader(manager)
		m.closers = append(m.closers, browserLoader)
		loader = browserLoader
	}

	fetcher := saslog.NewLoggingFetcher(httpFetcher, logger)
	extractor := saslog.NewLoggingLinkExtractor(&crawl.PageLinkExtractor{
		Fetcher: fetcher,
		Parser:  goquery.NewLinkParser(),
	}, logger)
	crawler := saslog.NewLoggingCrawler(crawl.NewCrawler(extractor), logger)
	inspector := goquery.NewInspector(saslog.NewLoggingPageLoader(loader, logger))

	return audit.NewAuditor(crawler, saslog.NewLoggingPageAuditor(inspector, logger)), nil
}

// openCache returns the Redis cache when configured and reachable, and an
// in-process cache otherwise.
func (m *Main) openCache(ctx context.Context, stderr io.Writer) siteaudit.ReportCache {
	if m.RedisAddr == "" {
		return inmem.NewReportCache(inmem.DefaultCacheCapacity)
	}

	c := redis.NewReportCache(m.RedisAddr, redis.DefaultPrefix, m.CacheTTL)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close()
		fmt.Fprintf(stderr, "warning: report cache disabled: %v\n", err)
		return inmem.NewReportCache(inmem.DefaultCacheCapacity)
	}
	m.closers = append(m.closers, c)
	return c
}

// newLogger returns a text logger on stderr when verbose is set and a
// logger that discards everything otherwise.
func newLogger(verbose bool, stderr io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func defaultDBPath() string {
	if path := os.Getenv("SITEAUDIT_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "siteaudit.db"
	}
	dir := filepath.Join(home, ".siteaudit")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "siteaudit.db")
}

// envDuration parses the named environment variable as a duration.
func envDuration(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
