package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/siteaudit"
	"github.com/fwojciec/siteaudit/crawl"
)

// Run executes the site command.
func (c *SiteCmd) Run(deps *Dependencies) error {
	opts := siteaudit.AuditOptions{MaxPages: c.MaxPages}

	fmt.Fprintf(deps.Stderr, "Auditing %s (up to %d pages)\n", c.URL, c.MaxPages)

	begin := time.Now()
	report, err := deps.Auditor.AuditSite(deps.Ctx, c.URL, opts, newProgressPrinter(deps.Stderr))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siteaudit.ErrorMessage(err))
		return err
	}

	// Stored reports outlive the caller's cancellation.
	ctx := context.WithoutCancel(deps.Ctx)

	record := siteaudit.NewReportRecord(report)
	if err := deps.Reports.CreateReport(ctx, record); err != nil {
		fmt.Fprintf(deps.Stderr, "error: storing report: %s\n", siteaudit.ErrorMessage(err))
		return err
	}
	if err := deps.Cache.Put(ctx, record.ID, report); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: caching report: %v\n", err)
	}

	if c.Save {
		path, err := deps.Writer.WriteReport(ctx, report)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: saving report: %s\n", siteaudit.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "Results saved to: %s\n", path)
	}

	if c.JSON {
		return writeJSON(deps, report)
	}

	printReport(deps.Stdout, report)
	fmt.Fprintf(deps.Stdout, "\nReport ID: %s (%s)\n", record.ID, crawl.FormatDuration(time.Since(begin)))
	return nil
}
