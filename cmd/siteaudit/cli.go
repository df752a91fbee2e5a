package main

import (
	"context"
	"io"

	"github.com/fwojciec/siteaudit"
	"github.com/fwojciec/siteaudit/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	DB      *sqlite.DB
	Reports siteaudit.ReportService
	Cache   siteaudit.ReportCache
	Writer  siteaudit.ReportWriter
	Auditor siteaudit.SiteAuditor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log crawl and audit operations to stderr"`

	Site    SiteCmd    `cmd:"" help:"Crawl a site and audit every discovered page"`
	Page    PageCmd    `cmd:"" help:"Audit a single page"`
	Reports ReportsCmd `cmd:"" help:"Manage stored site reports"`
}

// SiteCmd is the "site" subcommand.
type SiteCmd struct {
	URL                  string `arg:"" help:"Site URL to audit"`
	MaxPages             int    `short:"m" default:"50" help:"Maximum pages to audit (1-100)"`
	Concurrency          int    `short:"c" default:"1" help:"Pages audited at once (max 4)"`
	Save                 bool   `short:"s" help:"Save the report as JSON"`
	Output               string `short:"o" default:"./output" help:"Directory for saved reports"`
	Static               bool   `help:"Load pages over plain HTTP instead of a headless browser"`
	AllowUnreachableSeed bool   `help:"Audit pages even when none could be fetched while crawling"`
	JSON                 bool   `help:"Print the full report as JSON"`
}

// PageCmd is the "page" subcommand.
type PageCmd struct {
	URL    string `arg:"" help:"Page URL to audit"`
	Static bool   `help:"Load the page over plain HTTP instead of a headless browser"`
	JSON   bool   `help:"Print the result as JSON"`
}

// ReportsCmd groups the report management subcommands.
type ReportsCmd struct {
	List   ReportsListCmd   `cmd:"" help:"List stored reports"`
	Show   ReportsShowCmd   `cmd:"" help:"Show a stored report"`
	Delete ReportsDeleteCmd `cmd:"" help:"Delete a stored report"`
}

// ReportsListCmd is the "reports list" subcommand.
type ReportsListCmd struct {
	URL   string `help:"Only list reports for this start URL"`
	Limit int    `short:"n" default:"20" help:"Maximum reports to list"`
}

// ReportsShowCmd is the "reports show" subcommand.
type ReportsShowCmd struct {
	ID   string `arg:"" help:"Report ID"`
	JSON bool   `help:"Print the full report as JSON"`
}

// ReportsDeleteCmd is the "reports delete" subcommand.
type ReportsDeleteCmd struct {
	ID    string `arg:"" help:"Report ID"`
	Force bool   `help:"Confirm deletion"`
}
