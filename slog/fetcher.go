// Package slog provides log/slog decorators for the fetch collaborators.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/xconnector"
)

// Ensure LoggingFetcher implements xconnector.Fetcher.
var _ xconnector.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   xconnector.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next xconnector.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingTableFetcher implements xconnector.TableFetcher.
var _ xconnector.TableFetcher = (*LoggingTableFetcher)(nil)

// LoggingTableFetcher wraps a TableFetcher with debug logging.
type LoggingTableFetcher struct {
	next   xconnector.TableFetcher
	logger *slog.Logger
}

// NewLoggingTableFetcher creates a new LoggingTableFetcher.
func NewLoggingTableFetcher(next xconnector.TableFetcher, logger *slog.Logger) *LoggingTableFetcher {
	return &LoggingTableFetcher{next: next, logger: logger}
}

// FetchTables logs how many tables the page held and delegates to the
// wrapped fetcher.
func (f *LoggingTableFetcher) FetchTables(ctx context.Context, url string) (tables []xconnector.RawTable, err error) {
	defer func(begin time.Time) {
		headed := 0
		for _, t := range tables {
			if t.Heading != "" {
				headed++
			}
		}
		f.logger.Info("tables",
			"url", url,
			"tables", len(tables),
			"headed", headed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchTables(ctx, url)
}

// Ensure LoggingImageFetcher implements xconnector.ImageFetcher.
var _ xconnector.ImageFetcher = (*LoggingImageFetcher)(nil)

// LoggingImageFetcher wraps an ImageFetcher with debug logging.
type LoggingImageFetcher struct {
	next   xconnector.ImageFetcher
	logger *slog.Logger
}

// NewLoggingImageFetcher creates a new LoggingImageFetcher.
func NewLoggingImageFetcher(next xconnector.ImageFetcher, logger *slog.Logger) *LoggingImageFetcher {
	return &LoggingImageFetcher{next: next, logger: logger}
}

// FetchImage logs the download and delegates to the wrapped fetcher.
func (f *LoggingImageFetcher) FetchImage(ctx context.Context, url string) (data []byte, err error) {
	defer func(begin time.Time) {
		f.logger.Info("image",
			"url", url,
			"bytes", len(data),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchImage(ctx, url)
}
