package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/goquery"
	xhttp "github.com/fwojciec/xconnector/http"
	"github.com/fwojciec/xconnector/pretty"
	"github.com/fwojciec/xconnector/rod"
	"github.com/fwojciec/xconnector/scrape"
	xslog "github.com/fwojciec/xconnector/slog"
	"github.com/fwojciec/xconnector/sqlite"
	"github.com/google/uuid"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database holding reference datasets, opened by the
	// reference command only.
	DB *sqlite.DB

	// closers are released by Close in reverse order.
	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var err error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if cerr := m.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	m.closers = nil
	return err
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("xconnector"),
		kong.Description("Query metabolomics databases and reference datasets"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return deps.fail(xconnector.Errorf(xconnector.EINVALID, "no command specified. Run 'xconnector --help' to see available commands"))
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	if deps.Format, err = pretty.ParseFormat(cli.Format); err != nil {
		return deps.fail(err)
	}
	deps.BaseURL = cli.BaseURL

	deps.Logger = slog.New(slog.DiscardHandler)
	if cli.Debug {
		deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	deps.Logger = deps.Logger.With("run", uuid.NewString())
	deps.Logger.Info("run", "command", cmd)

	defer m.Close()

	switch cmd {
	case "sources":
	case "reference":
		if err := m.openReference(ctx, cli.Reference, deps); err != nil {
			return deps.fail(err)
		}
	default:
		if err := m.openClient(cli, deps, stderr); err != nil {
			return deps.fail(err)
		}
	}

	return kongCtx.Run(deps)
}

// openClient wires the scraping client. Requests to one host are spaced
// by the rate limiter; logging decorators sit inside it so logged
// durations exclude the wait.
func (m *Main) openClient(cli *CLI, deps *Dependencies, stderr io.Writer) error {
	httpFetcher := xhttp.NewFetcher(xhttp.WithTimeout(cli.Timeout))

	var fetcher xconnector.Fetcher = httpFetcher
	if cli.Render {
		rodFetcher, err := rod.NewFetcher(rod.WithFetchTimeout(cli.Timeout), rod.WithRecycleAfter(cli.Recycle))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --render")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = rodFetcher
	}
	m.closers = append(m.closers, fetcher)

	var images xconnector.ImageFetcher = httpFetcher
	if cli.Debug {
		fetcher = xslog.NewLoggingFetcher(fetcher, deps.Logger)
		images = xslog.NewLoggingImageFetcher(images, deps.Logger)
	}

	if cli.Rate > 0 {
		limiter := scrape.NewDomainLimiter(cli.Rate)
		fetcher = scrape.NewLimitedFetcher(fetcher, limiter)
		images = scrape.NewLimitedImageFetcher(images, limiter)
	}

	var tables xconnector.TableFetcher = scrape.NewTableFetcher(fetcher, goquery.NewTableParser())
	if cli.Debug {
		tables = xslog.NewLoggingTableFetcher(tables, deps.Logger)
	}

	deps.Client = &scrape.Client{
		Fetcher:  fetcher,
		Tables:   tables,
		Images:   images,
		MaxPages: cli.MaxPages,
	}
	return nil
}

// openReference opens the reference database and loads the dataset's CSV
// files when a data directory is given.
func (m *Main) openReference(ctx context.Context, cmd ReferenceCmd, deps *Dependencies) error {
	m.DB = sqlite.NewDB(cmd.DB)
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("failed to open database at %q: %w", cmd.DB, err)
	}
	m.closers = append(m.closers, m.DB)

	svc := sqlite.NewReferenceService(m.DB)
	dataset := xconnector.SourceID(cmd.Dataset)
	if cmd.DataDir != "" {
		if err := svc.LoadDir(ctx, dataset, cmd.DataDir); err != nil {
			return err
		}
	}

	loaded, err := svc.LoadedTables(ctx, dataset)
	if err != nil {
		return err
	}
	if len(loaded) == 0 {
		fmt.Fprintln(deps.Stderr, "Hint: Set --data-dir or XCONNECTOR_DATA_DIR to the directory holding the dataset CSV files")
	}
	for _, t := range loaded {
		deps.Logger.Debug("reference table", "name", t.Name, "columns", len(t.Columns), "rows", t.Rows, "loaded_at", t.LoadedAt)
	}

	deps.Reference = svc
	return nil
}
