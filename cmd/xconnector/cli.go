package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/pretty"
	"github.com/fwojciec/xconnector/scrape"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Format    pretty.Format
	BaseURL   string
	Client    *scrape.Client
	Reference xconnector.ReferenceService
}

// source returns the descriptor of the named source, rooted at BaseURL
// when one is configured.
func (d *Dependencies) source(id string) (xconnector.Source, error) {
	src, err := xconnector.LookupSource(xconnector.SourceID(id))
	if err != nil {
		return xconnector.Source{}, err
	}
	if d.BaseURL != "" {
		src = src.WithBaseURL(d.BaseURL)
	}
	return src, nil
}

// logger returns the configured logger or one that discards everything.
func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// fail reports err on stderr and returns it.
func (d *Dependencies) fail(err error) error {
	msg := xconnector.ErrorMessage(err)
	var e *xconnector.Error
	if !errors.As(err, &e) {
		msg = err.Error()
	}
	fmt.Fprintf(d.Stderr, "error: %s\n", msg)
	return err
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Timeout  time.Duration `default:"10s" env:"XCONNECTOR_TIMEOUT" help:"Per-page fetch timeout"`
	Rate     float64       `default:"2" env:"XCONNECTOR_RATE" help:"Requests per second per host (0 disables the limit)"`
	BaseURL  string        `name:"base-url" env:"XCONNECTOR_BASE_URL" help:"Override the base URL of the queried source"`
	Format   string        `short:"o" default:"table" env:"XCONNECTOR_FORMAT" help:"Output format: table, csv or markdown"`
	Render   bool          `help:"Render pages in headless Chrome before parsing"`
	Recycle  int64         `name:"recycle-after" default:"100" help:"Restart the browser after this many rendered pages"`
	MaxPages int           `name:"max-pages" default:"500" help:"Most result pages fetched by one paginated query"`
	Debug    bool          `help:"Log requests to stderr"`

	Info      InfoCmd      `cmd:"" help:"Show general information of accessions"`
	Section   SectionCmd   `cmd:"" help:"Show one detail-page section across accessions"`
	Full      FullCmd      `cmd:"" help:"Show every general field of accessions"`
	Browse    BrowseCmd    `cmd:"" help:"Query a browse endpoint with filters"`
	ChemQuery ChemQueryCmd `cmd:"" name:"chemquery" help:"Find accessions by molecular weight range"`
	LCMS      LCMSCmd      `cmd:"" name:"lcms" help:"Search by measured masses (LC-MS)"`
	LCMSMS    LCMSMSCmd    `cmd:"" name:"lcmsms" help:"Search by parent ion and fragment peaks (LC-MS/MS)"`
	Search    SearchCmd    `cmd:"" help:"Find accessions by free-text search"`
	Keyword   KeywordCmd   `cmd:"" help:"Find ReSpect records by name, formula or exact mass"`
	Spectrum  SpectrumCmd  `cmd:"" help:"Show ReSpect records and their peak lists"`
	Peaks     PeaksCmd     `cmd:"" help:"Chart the peaks of ReSpect records"`
	Structure StructureCmd `cmd:"" help:"Download structure images"`
	Reference ReferenceCmd `cmd:"" help:"Look up rows of a reference dataset"`
	Sources   SourcesCmd   `cmd:"" help:"List supported sources and datasets"`
}

// InfoCmd is the "info" subcommand.
type InfoCmd struct {
	Source     string   `arg:"" enum:"hmdb,lmdb,t3db,ymdb" help:"Source database"`
	Accessions []string `arg:"" help:"Accessions to fetch"`
}

// SectionCmd is the "section" subcommand.
type SectionCmd struct {
	Source     string   `arg:"" enum:"hmdb,lmdb,t3db,ymdb" help:"Source database"`
	Section    string   `arg:"" help:"Section name, e.g. synonyms"`
	Accessions []string `arg:"" help:"Accessions to fetch"`
}

// FullCmd is the "full" subcommand.
type FullCmd struct {
	Source     string   `arg:"" enum:"hmdb,lmdb,t3db,ymdb" help:"Source database"`
	Accessions []string `arg:"" help:"Accessions to fetch"`
}

// BrowseCmd is the "browse" subcommand.
type BrowseCmd struct {
	Source  string   `arg:"" enum:"hmdb,lmdb,t3db,ymdb" help:"Source database"`
	Browser string   `arg:"" help:"Browse endpoint, e.g. diseases"`
	Filter  []string `short:"f" help:"Filter as category=value (repeatable)"`
	List    []string `short:"l" help:"List value as name=value (repeatable)"`
	Switch  []string `short:"s" help:"Switch to turn on (repeatable)"`
}

// ChemQueryCmd is the "chemquery" subcommand.
type ChemQueryCmd struct {
	Source  string   `arg:"" enum:"hmdb,lmdb,t3db,ymdb" help:"Source database"`
	Start   float64  `arg:"" help:"Lower mass bound"`
	End     float64  `arg:"" help:"Upper mass bound"`
	Type    string   `default:"molecular" enum:"molecular,monoisotopic" help:"Mass type"`
	Status  []string `help:"Metabolite status filter (repeatable)"`
	Records bool     `short:"r" help:"Fetch the general records of the found accessions"`
}

// LCMSCmd is the "lcms" subcommand.
type LCMSCmd struct {
	Source    string    `arg:"" enum:"hmdb,lmdb,t3db,ymdb" help:"Source database"`
	Masses    []float64 `arg:"" help:"Measured masses"`
	IonMode   string    `name:"ion-mode" default:"positive" help:"positive, negative or neutral"`
	Adduct    []string  `short:"a" help:"Adduct type, e.g. M+H (repeatable)"`
	Tolerance float64   `default:"0.05" help:"Mass tolerance"`
	Unit      string    `default:"Da" help:"Tolerance unit: Da or ppm"`
}

// LCMSMSCmd is the "lcmsms" subcommand.
type LCMSMSCmd struct {
	Source          string   `arg:"" enum:"hmdb,lmdb,t3db,ymdb" help:"Source database"`
	ParentMass      float64  `arg:"" help:"Parent ion mass"`
	Peak            []string `short:"p" required:"" help:"Fragment peak as \"m/z intensity\" (repeatable)"`
	ParentTolerance float64  `name:"parent-tolerance" default:"0.1" help:"Parent ion mass tolerance"`
	ParentUnit      string   `name:"parent-unit" default:"Da" help:"Parent ion tolerance unit: Da or ppm"`
	IonMode         string   `name:"ion-mode" default:"positive" help:"positive or negative"`
	Energy          string   `default:"low" help:"Collision energy: low, med or high"`
	MZTolerance     float64  `name:"mz-tolerance" default:"0.5" help:"Fragment m/z tolerance"`
	MZUnit          string   `name:"mz-unit" default:"Da" help:"Fragment tolerance unit: Da or ppm"`
	Predicted       bool     `help:"Include predicted spectra"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Source   string `arg:"" enum:"hmdb,lmdb,t3db,ymdb" help:"Source database"`
	Query    string `arg:"" help:"Search text"`
	Searcher string `help:"Searcher, e.g. metabolites (default: the source's first)"`
	Records  bool   `short:"r" help:"Fetch the general records of the found accessions"`
}

// KeywordCmd is the "keyword" subcommand.
type KeywordCmd struct {
	Name      string `help:"Compound name"`
	Formula   string `help:"Molecular formula"`
	ExactMass string `name:"exact-mass" help:"Exact mass"`
	Tolerance string `help:"Exact mass tolerance"`
	Spectra   bool   `help:"Fetch the records of the found accessions"`
}

// SpectrumCmd is the "spectrum" subcommand.
type SpectrumCmd struct {
	Accessions []string `arg:"" help:"ReSpect accessions"`
}

// PeaksCmd is the "peaks" subcommand.
type PeaksCmd struct {
	Accessions []string `arg:"" help:"ReSpect accessions"`
	Width      int      `default:"40" help:"Length of the tallest bar"`
}

// StructureCmd is the "structure" subcommand.
type StructureCmd struct {
	Source     string   `arg:"" enum:"hmdb,lmdb,t3db,ymdb" help:"Source database"`
	Accessions []string `arg:"" help:"Accessions whose structure to download"`
	Dir        string   `short:"d" default:"structures" help:"Output directory"`
}

// ReferenceCmd is the "reference" subcommand.
type ReferenceCmd struct {
	Dataset    string   `arg:"" enum:"bedb,pedb" help:"Reference dataset"`
	Identifier string   `arg:"" help:"Identifier column, e.g. hmdb or pubchem_compound_id"`
	Values     []string `arg:"" help:"Identifier values to match exactly"`
	Related    []string `short:"r" help:"Related table to join, e.g. classification (repeatable)"`
	DataDir    string   `name:"data-dir" env:"XCONNECTOR_DATA_DIR" help:"Directory holding the dataset CSV files"`
	DB         string   `name:"db" default:":memory:" env:"XCONNECTOR_DB" help:"SQLite database keeping loaded datasets"`
}

// SourcesCmd is the "sources" subcommand.
type SourcesCmd struct{}

// parsePairs parses "key=value" arguments, grouping values by key.
func parsePairs(field string, pairs []string) (map[string][]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string][]string)
	var bad []string
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			bad = append(bad, p)
			continue
		}
		out[k] = append(out[k], v)
	}
	if len(bad) > 0 {
		return nil, xconnector.ViolationError(xconnector.EINVALID, "invalid "+field, []xconnector.Violation{{
			Field:  field,
			Values: bad,
			Reason: "expected name=value",
		}})
	}
	return out, nil
}
