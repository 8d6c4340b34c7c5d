package xconnector

import (
	"maps"
	"slices"
	"strings"
)

// SourceID identifies a supported database.
type SourceID string

// Supported sources.
const (
	SourceHMDB    SourceID = "hmdb"
	SourceLMDB    SourceID = "lmdb"
	SourceT3DB    SourceID = "t3db"
	SourceYMDB    SourceID = "ymdb"
	SourceBEDB    SourceID = "bedb"
	SourcePEDB    SourceID = "pedb"
	SourceReSpect SourceID = "respect"
)

// IDPattern describes a source's accession syntax: a fixed prefix followed
// by exactly Digits decimal digits.
type IDPattern struct {
	Prefix string
	Digits int
}

// SectionSpec locates one sub-table of a detail page and describes how it
// is reshaped.
type SectionSpec struct {
	// Name is the stable key used by callers, e.g. "synonyms".
	Name string

	// Heading is the label the page shows for the section. Lookup by
	// heading is preferred over Index.
	Heading string

	// Index is the legacy position of the section's table on the page.
	// It is only used when the page carries no headings at all.
	Index int

	// Columns are the expected output columns; the sentinel row uses them.
	Columns []string

	// MaxColumns keeps only the first N columns. Zero keeps all.
	MaxColumns int

	// Rename maps source column names to output names.
	Rename map[string]string

	// Collapse keeps only the first column and names it after the accession.
	Collapse bool

	// Sentinel is the cell value of the placeholder row ("NA" by default).
	Sentinel string
}

// sentinel returns the placeholder cell value for the section.
func (s SectionSpec) sentinel() string {
	if s.Sentinel != "" {
		return s.Sentinel
	}
	return NotAvailable
}

func (s SectionSpec) clone() SectionSpec {
	s.Columns = slices.Clone(s.Columns)
	s.Rename = maps.Clone(s.Rename)
	return s
}

// CategoryStyle controls how a category's values are encoded in a URL.
type CategoryStyle int

const (
	// CategoryFlag encodes each value as "value=1".
	CategoryFlag CategoryStyle = iota
	// CategoryBracket encodes each value as "filters[category][value]=1".
	CategoryBracket
)

// Category is a filter category and its closed set of allowed values.
type Category struct {
	Name   string
	Values []string
	Style  CategoryStyle
}

// Allows reports whether v is an allowed value of the category.
func (c Category) Allows(v string) bool {
	return slices.Contains(c.Values, v)
}

func (c Category) clone() Category {
	c.Values = slices.Clone(c.Values)
	return c
}

// Browser describes a browse endpoint of a source.
type Browser struct {
	Name       string
	Path       string
	Categories []Category

	// Lists are free-text list parameters such as "metabolite" or "disease".
	Lists []string

	// Switches are boolean parameters such as "inborn_error".
	Switches []string

	// Fixed are parameters always sent with the query.
	Fixed map[string]string

	// Paginated browsers are walked page by page until a page is empty.
	Paginated bool

	// KeepColumns keeps only the first N columns of result tables. Zero keeps all.
	KeepColumns int

	// DropColumns are removed from result tables.
	DropColumns []string

	// LabelByHeading labels each result table's rows with the table heading.
	LabelByHeading bool

	// FormulaWeight names a column whose cells hold a formula and its weight
	// separated by a line break ("C6H12O6 180.156" once the <br> becomes
	// whitespace); they are split into two columns.
	FormulaWeight string
}

// Category returns the named category of the browser.
func (b Browser) Category(name string) (Category, bool) {
	for _, c := range b.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

func (b Browser) clone() Browser {
	b.Categories = cloneEach(b.Categories, Category.clone)
	b.Lists = slices.Clone(b.Lists)
	b.Switches = slices.Clone(b.Switches)
	b.Fixed = maps.Clone(b.Fixed)
	b.DropColumns = slices.Clone(b.DropColumns)
	return b
}

// ChemQuerySpec describes a source's molecular-weight range search.
type ChemQuerySpec struct {
	Path     string
	Statuses []string
}

// MassSearchSpec describes a source's LC-MS search endpoint.
type MassSearchSpec struct {
	Path     string
	Database string
}

// TextSearchSpec describes a source's free-text search endpoint.
type TextSearchSpec struct {
	Path      string
	Searchers []string
	Paginated bool
}

// Source describes one database: where its pages live and how its tables
// are laid out. All source-specific behavior is data in this descriptor.
type Source struct {
	ID      SourceID
	Name    string
	BaseURL string

	// DetailPath is prepended to an accession to form its detail page path.
	DetailPath string

	// StructurePath is a format string taking the accession. Empty when the
	// source serves no structure images.
	StructurePath string

	IDPattern IDPattern

	// PrimaryField is the general-info key whose value labels a record.
	PrimaryField string

	// GeneralFields is the ordered allow-list of general-info keys.
	GeneralFields []string

	Sections []SectionSpec

	// FullRecordExclude are keys dropped from full records, along with the
	// row following each one.
	FullRecordExclude []string

	Browsers   []Browser
	ChemQuery  *ChemQuerySpec
	MassSearch *MassSearchSpec
	TandemPath string
	TextSearch *TextSearchSpec
}

// Section returns the named section layout of the source.
func (s Source) Section(name string) (SectionSpec, bool) {
	for _, sec := range s.Sections {
		if sec.Name == name {
			return sec, true
		}
	}
	return SectionSpec{}, false
}

// SectionNames returns the names of the source's sections in page order.
func (s Source) SectionNames() []string {
	names := make([]string, len(s.Sections))
	for i, sec := range s.Sections {
		names[i] = sec.Name
	}
	return names
}

// Browser returns the named browse endpoint of the source.
func (s Source) Browser(name string) (Browser, bool) {
	for _, b := range s.Browsers {
		if b.Name == name {
			return b, true
		}
	}
	return Browser{}, false
}

// Clone returns a deep copy of the source. Descriptors handed out by the
// registry are clones, so callers may modify them freely.
func (s Source) Clone() Source {
	s.GeneralFields = slices.Clone(s.GeneralFields)
	s.Sections = cloneEach(s.Sections, SectionSpec.clone)
	s.FullRecordExclude = slices.Clone(s.FullRecordExclude)
	s.Browsers = cloneEach(s.Browsers, Browser.clone)
	if s.ChemQuery != nil {
		cq := *s.ChemQuery
		cq.Statuses = slices.Clone(cq.Statuses)
		s.ChemQuery = &cq
	}
	if s.MassSearch != nil {
		ms := *s.MassSearch
		s.MassSearch = &ms
	}
	if s.TextSearch != nil {
		ts := *s.TextSearch
		ts.Searchers = slices.Clone(ts.Searchers)
		s.TextSearch = &ts
	}
	return s
}

func cloneEach[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}

// WithBaseURL returns a copy of the source rooted at baseURL.
func (s Source) WithBaseURL(baseURL string) Source {
	s.BaseURL = strings.TrimRight(baseURL, "/")
	return s
}

func (s Source) url(path string) string {
	return s.BaseURL + path
}
