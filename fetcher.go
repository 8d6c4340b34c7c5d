package xconnector

import "context"

// Fetcher retrieves HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch returns the HTML of the page at url.
	// Returns ENOTFOUND when the server reports the page does not exist.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// ImageFetcher downloads binary resources such as structure images.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// TableParser extracts every table of an HTML document, in document order.
type TableParser interface {
	Parse(html string) ([]RawTable, error)
}

// TableFetcher fetches a page and returns its parsed tables.
type TableFetcher interface {
	FetchTables(ctx context.Context, url string) ([]RawTable, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
