package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/bloom"
)

// DefaultMaxPages bounds a pagination walk.
const DefaultMaxPages = 500

// repeatFalsePositiveRate is the chance that a new page is taken for a
// repeat and ends a walk early.
const repeatFalsePositiveRate = 0.0001

// ComputeHash computes a hash of the content using xxhash.
func ComputeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

func (c *Client) maxPages() int {
	if c.MaxPages > 0 {
		return c.MaxPages
	}
	return DefaultMaxPages
}

// pageFunc fetches one result page and returns what it extracted together
// with a fingerprint of it. An empty fingerprint means the page is empty.
type pageFunc[T any] func(ctx context.Context, url string) (T, string, error)

// walk fetches the result pages of q in order and hands what fetch
// extracted from each to keep. A non-paginated query is fetched once.
// A paginated walk ends at the first empty page, at a page repeating an
// earlier one (sites that clamp the page number), at a missing page past
// the first, or after maxPages pages.
func walk[T any](ctx context.Context, q xconnector.Query, maxPages int, fetch pageFunc[T], keep func(T)) error {
	if !q.Paginated() {
		v, _, err := fetch(ctx, q.URL())
		if err != nil {
			return fetchError(q.URL(), err)
		}
		keep(v)
		return nil
	}

	seen := bloom.NewFilter(uint(maxPages), repeatFalsePositiveRate)
	pager := q.Pages()
	for pager.Page() < maxPages {
		u := pager.Next()
		v, fingerprint, err := fetch(ctx, u)
		switch {
		case err != nil && pager.Page() > 1 && xconnector.ErrorCode(err) == xconnector.ENOTFOUND:
			return nil
		case err != nil:
			return fetchError(u, err)
		case fingerprint == "":
			return nil
		case seen.TestAndAdd(ComputeHash(fingerprint)):
			return nil
		}
		keep(v)
	}
	return nil
}

// tableFingerprint serializes the body rows of tables. Tables without rows
// contribute nothing, so a page of empty tables has an empty fingerprint.
func tableFingerprint(tables []xconnector.RawTable) string {
	var b strings.Builder
	for _, t := range tables {
		for _, row := range t.Rows {
			b.WriteString(strings.Join(row, "\x1f"))
			b.WriteByte('\x1e')
		}
	}
	return b.String()
}
