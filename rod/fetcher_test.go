//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resultPage fills its table from a script after a delay, the way the
// browse listings do.
const resultPage = `<!DOCTYPE html>
<html>
<body>
<div id="results"></div>
<script>
setTimeout(function() {
  document.querySelector('#results').innerHTML =
    '<table><tr><th>LMDB ID</th><th>Name</th></tr><tr><td>LMDB00001</td><td>Alanine</td></tr></table>';
}, 300);
</script>
</body>
</html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/metabolites":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(resultPage))
		case "/empty":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><p>No results</p></body></html>`))
		case "/slow":
			time.Sleep(500 * time.Millisecond)
			_, _ = w.Write([]byte(`<html><body>delayed</body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher(t *testing.T, opts ...rod.Option) *rod.Fetcher {
	t.Helper()
	fetcher, err := rod.NewFetcher(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fetcher.Close() })
	return fetcher
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("waits for a script-rendered result table", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		fetcher := newFetcher(t)

		html, err := fetcher.Fetch(context.Background(), srv.URL+"/metabolites")

		require.NoError(t, err)
		assert.Contains(t, html, "<td>LMDB00001</td>")
	})

	t.Run("returns pages without tables after the table wait", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		fetcher := newFetcher(t, rod.WithTableWait(200*time.Millisecond))

		html, err := fetcher.Fetch(context.Background(), srv.URL+"/empty")

		require.NoError(t, err)
		assert.Contains(t, html, "No results")
	})

	t.Run("maps a missing page to not found", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		fetcher := newFetcher(t)

		_, err := fetcher.Fetch(context.Background(), srv.URL+"/metabolites/LMDB99999")

		assert.Equal(t, xconnector.ENOTFOUND, xconnector.ErrorCode(err))
	})

	t.Run("honors a cancelled context", func(t *testing.T) {
		t.Parallel()

		fetcher := newFetcher(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, "http://example.com")

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("times out on a slow page", func(t *testing.T) {
		t.Parallel()

		srv := newSite(t)
		fetcher := newFetcher(t, rod.WithFetchTimeout(100*time.Millisecond))

		_, err := fetcher.Fetch(context.Background(), srv.URL+"/slow")

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("fails after close", func(t *testing.T) {
		t.Parallel()

		fetcher := newFetcher(t)
		require.NoError(t, fetcher.Close())
		require.NoError(t, fetcher.Close())

		_, err := fetcher.Fetch(context.Background(), "http://example.com")

		assert.Equal(t, xconnector.EINVALID, xconnector.ErrorCode(err))
	})
}
