package mock

import (
	"context"

	"github.com/fwojciec/xconnector"
)

var _ xconnector.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of xconnector.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ xconnector.ImageFetcher = (*ImageFetcher)(nil)

// ImageFetcher is a mock implementation of xconnector.ImageFetcher.
type ImageFetcher struct {
	FetchImageFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *ImageFetcher) FetchImage(ctx context.Context, url string) ([]byte, error) {
	return f.FetchImageFn(ctx, url)
}

var _ xconnector.TableFetcher = (*TableFetcher)(nil)

// TableFetcher is a mock implementation of xconnector.TableFetcher.
type TableFetcher struct {
	FetchTablesFn func(ctx context.Context, url string) ([]xconnector.RawTable, error)
}

func (f *TableFetcher) FetchTables(ctx context.Context, url string) ([]xconnector.RawTable, error) {
	return f.FetchTablesFn(ctx, url)
}

var _ xconnector.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of xconnector.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
