package main

import (
	"fmt"

	"github.com/fwojciec/siteaudit"
)

// Run executes the page command.
func (c *PageCmd) Run(deps *Dependencies) error {
	result, err := deps.Auditor.AuditPage(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siteaudit.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps, result)
	}

	printPage(deps.Stdout, result)
	return nil
}
