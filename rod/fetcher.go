// Package rod provides a browser-rendering implementation of
// xconnector.Fetcher for result pages whose tables are filled in by
// JavaScript.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/xconnector"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	// DefaultFetchTimeout bounds a single page render.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultTableWait is how long a loaded page may take to produce its
	// first table. Pages past the last result page never do.
	DefaultTableWait = 2 * time.Second

	// DefaultRecycleAfter is the number of rendered pages before Chrome is
	// restarted. Long browse walks render hundreds of listing pages and the
	// browser's memory only grows.
	DefaultRecycleAfter = 75
)

// Ensure Fetcher implements xconnector.Fetcher at compile time.
var _ xconnector.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using headless Chrome. Pages are
// rendered one at a time; the browser is restarted after a number of
// pages.
type Fetcher struct {
	timeout      time.Duration
	tableWait    time.Duration
	recycleAfter int64

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	rendered int64
	closed   atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page render timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithTableWait sets how long to wait for a table after the page loaded.
func WithTableWait(d time.Duration) Option {
	return func(f *Fetcher) {
		f.tableWait = d
	}
}

// WithRecycleAfter restarts the browser after n rendered pages. Zero or
// less never restarts it.
func WithRecycleAfter(n int64) Option {
	return func(f *Fetcher) {
		f.recycleAfter = n
	}
}

// NewFetcher launches a headless Chrome browser. Close must be called when
// the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		tableWait:    DefaultTableWait,
		recycleAfter: DefaultRecycleAfter,
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := f.launch(); err != nil {
		return nil, err
	}
	return f, nil
}

// Fetch renders url and returns its HTML once the first table appeared or
// the table wait ran out. A 404 document response returns ENOTFOUND, like
// the plain HTTP fetcher.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", xconnector.Errorf(xconnector.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.page()
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	status := 0
	waitResponse := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	waitResponse()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := statusError(url, status); err != nil {
		return "", err
	}

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("loading %s: %w", url, err)
	}
	if err := f.waitTable(ctx, page); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return html, nil
}

// waitTable blocks until page holds a table or the table wait runs out.
// Running out is not an error: empty result pages carry no table.
func (f *Fetcher) waitTable(ctx context.Context, page *rod.Page) error {
	_, err := page.Timeout(f.tableWait).Element("table")
	if err == nil || ctx.Err() == nil {
		return nil
	}
	return ctx.Err()
}

func statusError(url string, status int) error {
	switch {
	case status == 404:
		return xconnector.Errorf(xconnector.ENOTFOUND, "HTTP 404 for %s", url)
	case status >= 400:
		return fmt.Errorf("HTTP %d for %s", status, url)
	}
	return nil
}

// page opens a blank tab, restarting the browser first when it has
// rendered recycleAfter pages.
func (f *Fetcher) page() (*rod.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.recycleAfter > 0 && f.rendered >= f.recycleAfter {
		f.recycle()
	}

	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	f.rendered++
	return page, nil
}

// launch starts a headless browser. Images are not loaded: only tables are
// read from rendered pages.
func (f *Fetcher) launch() error {
	l := launcher.New().
		Set("disable-dev-shm-usage").
		Set("blink-settings", "imagesEnabled=false").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	f.browser = browser
	f.launcher = l
	return nil
}

// recycle swaps in a fresh browser. When the new one fails to start the
// old one keeps serving. Must be called with mu held.
func (f *Fetcher) recycle() {
	oldBrowser, oldLauncher := f.browser, f.launcher
	if err := f.launch(); err != nil {
		f.browser, f.launcher = oldBrowser, oldLauncher
		return
	}
	_ = oldBrowser.Close()
	oldLauncher.Kill()
	f.rendered = 0
}

// Close shuts the browser down. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}

// LauncherPID returns the process ID of the running browser launcher, or 0
// after Close.
func (f *Fetcher) LauncherPID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launcher == nil {
		return 0
	}
	return f.launcher.PID()
}
