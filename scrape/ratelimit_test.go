package scrape_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/mock"
	"github.com/fwojciec/xconnector/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("allows immediate request when under limit", func(t *testing.T) {
		t.Parallel()

		limiter := scrape.NewDomainLimiter(10)

		start := time.Now()
		err := limiter.Wait(context.Background(), "hmdb.ca")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond, "first request should be immediate")
	})

	t.Run("rate limits requests to same domain", func(t *testing.T) {
		t.Parallel()

		limiter := scrape.NewDomainLimiter(10) // 100ms between requests

		require.NoError(t, limiter.Wait(context.Background(), "hmdb.ca"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "hmdb.ca")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond, "should wait for rate limit")
	})

	t.Run("different domains have independent limits", func(t *testing.T) {
		t.Parallel()

		limiter := scrape.NewDomainLimiter(10)

		require.NoError(t, limiter.Wait(context.Background(), "hmdb.ca"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "lmdb.ca")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond, "different domain should not wait")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := scrape.NewDomainLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "hmdb.ca"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "hmdb.ca"))
	})
}

func TestLimitedFetcher(t *testing.T) {
	t.Parallel()

	t.Run("waits on the URL host before fetching", func(t *testing.T) {
		t.Parallel()

		var events []string
		limiter := &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				events = append(events, "wait "+domain)
				return nil
			},
		}
		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				events = append(events, "fetch "+url)
				return "<html></html>", nil
			},
		}

		html, err := scrape.NewLimitedFetcher(inner, limiter).Fetch(context.Background(), "https://t3db.ca/toxins/T3D0001")

		require.NoError(t, err)
		assert.Equal(t, "<html></html>", html)
		assert.Equal(t, []string{"wait t3db.ca", "fetch https://t3db.ca/toxins/T3D0001"}, events)
	})

	t.Run("does not fetch when the wait fails", func(t *testing.T) {
		t.Parallel()

		limiter := &mock.DomainLimiter{
			WaitFn: func(context.Context, string) error { return context.Canceled },
		}
		inner := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				t.Fatal("fetch must not be called")
				return "", nil
			},
		}

		_, err := scrape.NewLimitedFetcher(inner, limiter).Fetch(context.Background(), "https://t3db.ca/")

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects malformed URLs", func(t *testing.T) {
		t.Parallel()

		limiter := &mock.DomainLimiter{}
		_, err := scrape.NewLimitedFetcher(&mock.Fetcher{}, limiter).Fetch(context.Background(), "://bad")

		assert.Equal(t, xconnector.EINVALID, xconnector.ErrorCode(err))
	})

	t.Run("limits image downloads", func(t *testing.T) {
		t.Parallel()

		var waited string
		limiter := &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				waited = domain
				return nil
			},
		}
		inner := &mock.ImageFetcher{
			FetchImageFn: func(context.Context, string) ([]byte, error) {
				return nil, errors.New("gone")
			},
		}

		_, err := scrape.NewLimitedImageFetcher(inner, limiter).FetchImage(context.Background(), "https://lmdb.ca/structures/LMDB00001/image.png")

		require.Error(t, err)
		assert.Equal(t, "lmdb.ca", waited)
	})
}
