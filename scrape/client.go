package scrape

import (
	"context"
	"iter"

	"github.com/fwojciec/xconnector"
)

// Client runs queries against the database sites.
//
// Per-accession methods return lazy sequences: each element performs one
// fetch when pulled and ranging again fetches every page again. Breaking
// out of the range loop stops further fetches. Fetch and parse failures
// never end a sequence; they become sentinel elements whose Status and
// Reason say what went wrong.
type Client struct {
	// Fetcher returns raw pages, used where identifiers are read from
	// links rather than tables.
	Fetcher xconnector.Fetcher

	// Tables returns the parsed tables of a page.
	Tables xconnector.TableFetcher

	// Images downloads structure images. Optional.
	Images xconnector.ImageFetcher

	// MaxPages bounds pagination walks. Defaults to DefaultMaxPages.
	MaxPages int
}

// NewClient creates a Client whose tables are parsed from fetcher's pages.
func NewClient(fetcher xconnector.Fetcher, parser xconnector.TableParser) *Client {
	return &Client{
		Fetcher: fetcher,
		Tables:  NewTableFetcher(fetcher, parser),
	}
}

// detailPage fetches and parses accession's detail page.
func (c *Client) detailPage(ctx context.Context, src xconnector.Source, accession string) xconnector.DetailPage {
	tables, err := c.Tables.FetchTables(ctx, xconnector.DetailURL(src, accession))
	return xconnector.DetailPage{Accession: accession, Tables: tables, Err: err}
}

// Records yields the general record of each accession, in input order.
func (c *Client) Records(ctx context.Context, src xconnector.Source, accessions []string) iter.Seq[xconnector.Record] {
	return func(yield func(xconnector.Record) bool) {
		for _, acc := range accessions {
			if !yield(xconnector.NormalizePage(c.detailPage(ctx, src, acc), src)) {
				return
			}
		}
	}
}

// Sections yields the named section of each accession's detail page.
// Returns ESECTION before any fetch when src has no such section.
func (c *Client) Sections(ctx context.Context, src xconnector.Source, section string, accessions []string) (iter.Seq[xconnector.SectionTable], error) {
	spec, ok := src.Section(section)
	if !ok {
		return nil, xconnector.Errorf(xconnector.ESECTION, "%s has no section %q", src.ID, section)
	}
	return func(yield func(xconnector.SectionTable) bool) {
		for _, acc := range accessions {
			if !yield(xconnector.SectionFromPage(c.detailPage(ctx, src, acc), spec)) {
				return
			}
		}
	}, nil
}

// FullRecords yields every field of each accession's general table.
func (c *Client) FullRecords(ctx context.Context, src xconnector.Source, accessions []string) iter.Seq[xconnector.Record] {
	return func(yield func(xconnector.Record) bool) {
		for _, acc := range accessions {
			page := c.detailPage(ctx, src, acc)
			r := xconnector.NormalizeFullRecord(acc, page.Tables, src)
			if page.Err != nil {
				r = xconnector.Record{
					Label:     acc,
					Accession: acc,
					Status:    xconnector.StatusFromError(page.Err),
					Reason:    page.Err.Error(),
				}
			}
			if !yield(r) {
				return
			}
		}
	}
}

// Spectra yields the ReSpect record and peak list of each accession.
func (c *Client) Spectra(ctx context.Context, src xconnector.Source, accessions []string) iter.Seq[xconnector.Spectrum] {
	return func(yield func(xconnector.Spectrum) bool) {
		for _, acc := range accessions {
			page := c.detailPage(ctx, src, acc)
			s := xconnector.NormalizeSpectrum(acc, page.Tables)
			if page.Err != nil {
				s = xconnector.Spectrum{Record: xconnector.Record{
					Label:     acc,
					Accession: acc,
					Status:    xconnector.StatusFromError(page.Err),
					Reason:    page.Err.Error(),
				}}
			}
			if !yield(s) {
				return
			}
		}
	}
}

// fetchError wraps a failed result-page fetch. Unlike per-accession
// fetches, a failed search page fails the whole search.
func fetchError(url string, err error) error {
	if xconnector.ErrorCode(err) == xconnector.ENOTFOUND {
		return err
	}
	return xconnector.Errorf(xconnector.EFETCH, "fetching %s: %v", url, err)
}

