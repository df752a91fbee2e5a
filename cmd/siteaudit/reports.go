package main

import (
	"fmt"

	"github.com/fwojciec/siteaudit"
	"github.com/fwojciec/siteaudit/crawl"
)

// Run executes the reports list command.
func (c *ReportsListCmd) Run(deps *Dependencies) error {
	filter := siteaudit.ReportFilter{Limit: c.Limit}
	if c.URL != "" {
		startURL, err := siteaudit.NormalizeSeedURL(c.URL)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", siteaudit.ErrorMessage(err))
			return err
		}
		filter.StartURL = &startURL
	}

	records, err := deps.Reports.FindReports(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siteaudit.ErrorMessage(err))
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No reports found. Use 'siteaudit site' to create one.")
		return nil
	}

	for _, r := range records {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-9s  %3d pages  %3d errors  %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Status, r.PagesAudited, r.Errors,
			crawl.TruncateURL(r.StartURL, 60))
	}

	return nil
}

// Run executes the reports show command. The cache is consulted before the
// database.
func (c *ReportsShowCmd) Run(deps *Dependencies) error {
	report, err := deps.Cache.Get(deps.Ctx, c.ID)
	if siteaudit.ErrorCode(err) == siteaudit.ENOTFOUND {
		record, ferr := deps.Reports.FindReportByID(deps.Ctx, c.ID)
		if ferr != nil {
			fmt.Fprintf(deps.Stderr, "error: %s. Use 'siteaudit reports list' to see stored reports.\n", siteaudit.ErrorMessage(ferr))
			return ferr
		}
		report, err = record.Report, nil
		if perr := deps.Cache.Put(deps.Ctx, c.ID, report); perr != nil {
			fmt.Fprintf(deps.Stderr, "warning: caching report: %v\n", perr)
		}
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siteaudit.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps, report)
	}

	printReport(deps.Stdout, report)
	return nil
}

// Run executes the reports delete command.
func (c *ReportsDeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return siteaudit.Errorf(siteaudit.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Reports.DeleteReport(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siteaudit.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted report %s\n", c.ID)
	return nil
}
