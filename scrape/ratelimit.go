package scrape

import (
	"context"
	"net/url"
	"sync"

	"github.com/fwojciec/xconnector"
	"golang.org/x/time/rate"
)

var _ xconnector.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-domain rate limiting using token buckets.
// Each database host gets its own limiter, so a batch spanning several
// sources is only slowed down per host.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a new DomainLimiter with the specified requests per second limit.
// Each domain gets its own limiter with a burst of 1 (no bursting allowed).
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

var (
	_ xconnector.Fetcher      = (*LimitedFetcher)(nil)
	_ xconnector.ImageFetcher = (*LimitedImageFetcher)(nil)
)

// LimitedFetcher waits on a DomainLimiter for the URL's host before every
// fetch.
type LimitedFetcher struct {
	next    xconnector.Fetcher
	limiter xconnector.DomainLimiter
}

// NewLimitedFetcher creates a new LimitedFetcher.
func NewLimitedFetcher(next xconnector.Fetcher, limiter xconnector.DomainLimiter) *LimitedFetcher {
	return &LimitedFetcher{next: next, limiter: limiter}
}

// Fetch waits for the host's turn and delegates to the wrapped fetcher.
func (f *LimitedFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := wait(ctx, f.limiter, rawURL); err != nil {
		return "", err
	}
	return f.next.Fetch(ctx, rawURL)
}

// Close delegates to the wrapped fetcher.
func (f *LimitedFetcher) Close() error {
	return f.next.Close()
}

// LimitedImageFetcher is LimitedFetcher for image downloads.
type LimitedImageFetcher struct {
	next    xconnector.ImageFetcher
	limiter xconnector.DomainLimiter
}

// NewLimitedImageFetcher creates a new LimitedImageFetcher.
func NewLimitedImageFetcher(next xconnector.ImageFetcher, limiter xconnector.DomainLimiter) *LimitedImageFetcher {
	return &LimitedImageFetcher{next: next, limiter: limiter}
}

// FetchImage waits for the host's turn and delegates to the wrapped fetcher.
func (f *LimitedImageFetcher) FetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	if err := wait(ctx, f.limiter, rawURL); err != nil {
		return nil, err
	}
	return f.next.FetchImage(ctx, rawURL)
}

func wait(ctx context.Context, limiter xconnector.DomainLimiter, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return xconnector.Errorf(xconnector.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	return limiter.Wait(ctx, u.Host)
}
