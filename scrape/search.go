package scrape

import (
	"context"
	"strings"

	"github.com/fwojciec/xconnector"
)

// CollectIDs gathers the accessions linked from every result page of q.
func (c *Client) CollectIDs(ctx context.Context, src xconnector.Source, q xconnector.Query) (xconnector.IDSet, error) {
	ids := make(xconnector.IDSet)
	err := walk(ctx, q, c.maxPages(), func(ctx context.Context, url string) (xconnector.IDSet, string, error) {
		html, err := c.Fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, "", err
		}
		found := xconnector.ExtractIDs(src.IDPattern, html)
		return found, strings.Join(found.Sorted(), " "), nil
	}, ids.Merge)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ChemQuery returns the accessions whose mass falls in the query's range.
func (c *Client) ChemQuery(ctx context.Context, src xconnector.Source, q xconnector.ChemQuery) (xconnector.IDSet, error) {
	query, err := xconnector.BuildChemQuery(src, q)
	if err != nil {
		return nil, err
	}
	return c.CollectIDs(ctx, src, query)
}

// TextSearch returns the accessions matching a free-text search.
func (c *Client) TextSearch(ctx context.Context, src xconnector.Source, query, searcher string) (xconnector.IDSet, error) {
	q, err := xconnector.BuildTextSearch(src, query, searcher)
	if err != nil {
		return nil, err
	}
	return c.CollectIDs(ctx, src, q)
}

// Browse returns the rows of the named browse endpoint, every result page
// included.
func (c *Client) Browse(ctx context.Context, src xconnector.Source, browser string, req xconnector.BrowseRequest) (xconnector.Table, error) {
	q, err := xconnector.BuildQuery(src, browser, req)
	if err != nil {
		return xconnector.Table{}, err
	}
	b, _ := src.Browser(browser)

	var out xconnector.Table
	err = walk(ctx, q, c.maxPages(), func(ctx context.Context, url string) ([]xconnector.RawTable, string, error) {
		tables, err := c.Tables.FetchTables(ctx, url)
		if err != nil {
			return nil, "", err
		}
		results := browseTables(b, tables)
		return results, tableFingerprint(results), nil
	}, func(tables []xconnector.RawTable) {
		for _, t := range tables {
			nt := xconnector.NormalizeBrowseTable(b, t)
			out.Append(nt.Columns, nt.Rows)
		}
	})
	if err != nil {
		return xconnector.Table{}, err
	}
	return out, nil
}

// browseTables picks the result tables of a browse page: every table when
// results are grouped under headings, otherwise the first.
func browseTables(b xconnector.Browser, tables []xconnector.RawTable) []xconnector.RawTable {
	if b.LabelByHeading {
		return tables
	}
	if len(tables) == 0 {
		return nil
	}
	return tables[:1]
}

// MassSearch runs an LC-MS search, one request per adduct type, and
// returns the combined hits ordered by adduct and monoisotopic mass.
func (c *Client) MassSearch(ctx context.Context, src xconnector.Source, q xconnector.MassQuery) (xconnector.Table, error) {
	urls, err := xconnector.BuildMassQuery(src, q)
	if err != nil {
		return xconnector.Table{}, err
	}

	var out xconnector.Table
	for _, u := range urls {
		tables, err := c.Tables.FetchTables(ctx, u)
		if err != nil {
			return xconnector.Table{}, fetchError(u, err)
		}
		for _, t := range tables {
			nt := xconnector.TableFromRaw(t, "")
			out.Append(nt.Columns, nt.Rows)
		}
	}
	out.SortBy("Adduct", "Monoisotopic Mass")
	return out, nil
}

// Tandem runs an LC-MS/MS search and returns its result table without the
// display-only columns.
func (c *Client) Tandem(ctx context.Context, src xconnector.Source, q xconnector.TandemQuery) (xconnector.Table, error) {
	u, err := xconnector.BuildTandemQuery(src, q)
	if err != nil {
		return xconnector.Table{}, err
	}
	tables, err := c.Tables.FetchTables(ctx, u)
	if err != nil {
		return xconnector.Table{}, fetchError(u, err)
	}
	if len(tables) == 0 {
		return xconnector.Table{}, nil
	}
	return xconnector.TableFromRaw(tables[0].DropColumns(xconnector.TandemDropColumns...), ""), nil
}

// KeywordSearch returns the ReSpect accessions matching q, in page order.
func (c *Client) KeywordSearch(ctx context.Context, src xconnector.Source, q xconnector.KeywordQuery) ([]string, error) {
	u, err := xconnector.BuildKeywordSearch(src, q)
	if err != nil {
		return nil, err
	}
	html, err := c.Fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, fetchError(u, err)
	}
	return xconnector.ExtractKeywordAccessions(html), nil
}
