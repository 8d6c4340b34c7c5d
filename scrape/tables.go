// Package scrape fetches database result pages and turns them into
// normalized records and tables.
package scrape

import (
	"context"
	"fmt"

	"github.com/fwojciec/xconnector"
)

var _ xconnector.TableFetcher = (*TableFetcher)(nil)

// TableFetcher fetches a page and parses its tables.
type TableFetcher struct {
	Fetcher xconnector.Fetcher
	Parser  xconnector.TableParser
}

// NewTableFetcher creates a new TableFetcher.
func NewTableFetcher(fetcher xconnector.Fetcher, parser xconnector.TableParser) *TableFetcher {
	return &TableFetcher{Fetcher: fetcher, Parser: parser}
}

// FetchTables returns the tables of the page at url. Fetch errors are
// returned as is so callers can tell a missing page from a failed one.
func (f *TableFetcher) FetchTables(ctx context.Context, url string) ([]xconnector.RawTable, error) {
	html, err := f.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	tables, err := f.Parser.Parse(html)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return tables, nil
}
