package siteaudit

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch requests the URL and returns its HTML body.
	// Non-HTML responses and non-2xx statuses are errors.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}
