package xconnector

import (
	"fmt"
	"maps"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Shared query parameters sent by the sources' own search forms.
const (
	paramUTF8   = "utf8"
	utf8Check   = "✓"
	paramFilter = "filter"
	paramPage   = "page"
	paramCommit = "commit"
	commitValue = "Search"
)

const respectKeywordPath = "/menta.cgi/respect/search/keyword"

// Query is a built, validated request URL. Paginated queries are expanded
// into page URLs with Pages.
type Query struct {
	base      string
	params    url.Values
	paginated bool
}

// URL returns the query's URL without a page number.
func (q Query) URL() string {
	return q.base + "?" + q.params.Encode()
}

// Paginated reports whether results span several pages.
func (q Query) Paginated() bool {
	return q.paginated
}

// Pages returns a pager over the query's result pages, starting at page 1.
func (q Query) Pages() *Pager {
	return &Pager{q: q}
}

// Pager produces page URLs of a paginated query on request.
type Pager struct {
	q    Query
	page int
}

// Next returns the URL of the next page.
func (p *Pager) Next() string {
	p.page++
	params := url.Values{}
	for k, v := range p.q.params {
		params[k] = slices.Clone(v)
	}
	params.Set(paramPage, strconv.Itoa(p.page))
	return p.q.base + "?" + params.Encode()
}

// Page returns the number of the page last returned by Next.
func (p *Pager) Page() int {
	return p.page
}

func baseParams() url.Values {
	return url.Values{paramUTF8: {utf8Check}}
}

// BrowseRequest is the input of a browse query.
type BrowseRequest struct {
	Filters FilterSet

	// Lists holds free-text lists such as metabolite IDs or disease names,
	// keyed by list name.
	Lists map[string][]string

	// Switches are boolean parameters to turn on.
	Switches []string
}

// BuildQuery builds the URL of the named browse endpoint of src.
//
// Every filter value must be allowed by the browser; otherwise EFILTER is
// returned listing every invalid category and value. Unknown list names and
// switches are reported the same way.
func BuildQuery(src Source, browser string, req BrowseRequest) (Query, error) {
	b, ok := src.Browser(browser)
	if !ok {
		return Query{}, Errorf(ENOTFOUND, "%s has no browser %q", src.ID, browser)
	}

	violations := req.Filters.Validate(b.Categories)
	for _, name := range slices.Sorted(maps.Keys(req.Lists)) {
		if !slices.Contains(b.Lists, name) {
			violations = append(violations, Violation{Field: name, Reason: "unknown list"})
		}
	}
	for _, s := range req.Switches {
		if !slices.Contains(b.Switches, s) {
			violations = append(violations, Violation{Field: s, Reason: "unknown switch"})
		}
	}
	if len(violations) > 0 {
		return Query{}, ViolationError(EFILTER, "invalid filters", violations)
	}

	params := baseParams()
	params.Set(paramFilter, "true")
	for k, v := range b.Fixed {
		params.Set(k, v)
	}
	for _, name := range req.Filters.Categories() {
		c, _ := b.Category(name)
		for _, v := range req.Filters[name] {
			params.Set(categoryParam(c, v), "1")
		}
	}
	for name, values := range req.Lists {
		if len(values) == 0 {
			continue
		}
		params.Set(name, "1")
		params.Set(name+"_list", strings.Join(values, "\n"))
	}
	for _, s := range req.Switches {
		params.Set(s, "1")
	}

	return Query{base: src.url(b.Path), params: params, paginated: b.Paginated}, nil
}

func categoryParam(c Category, value string) string {
	if c.Style == CategoryBracket {
		return fmt.Sprintf("filters[%s][%s]", c.Name, value)
	}
	return value
}

// Search types of a ChemQuery.
const (
	SearchMolecular    = "molecular"
	SearchMonoisotopic = "monoisotopic"
)

// ChemQuery searches a source by molecular weight range.
type ChemQuery struct {
	Start float64
	End   float64

	// SearchType is SearchMolecular (average mass) or SearchMonoisotopic.
	// Empty means SearchMolecular.
	SearchType string

	// Statuses filter results by metabolite status.
	Statuses []string
}

// BuildChemQuery builds the paginated molecular-weight search of src.
// Returns ERANGE unless Start < End and both are finite.
func BuildChemQuery(src Source, q ChemQuery) (Query, error) {
	if src.ChemQuery == nil {
		return Query{}, Errorf(ENOTFOUND, "%s has no molecular weight search", src.ID)
	}
	if !finite(q.Start) || !finite(q.End) || q.Start >= q.End {
		return Query{}, Errorf(ERANGE, "invalid mass range %v-%v: start must be less than end", q.Start, q.End)
	}
	searchType := q.SearchType
	if searchType == "" {
		searchType = SearchMolecular
	}
	if searchType != SearchMolecular && searchType != SearchMonoisotopic {
		return Query{}, Errorf(EINVALID, "search type must be %s or %s, got %q", SearchMolecular, SearchMonoisotopic, searchType)
	}
	status := Category{Name: "status", Values: src.ChemQuery.Statuses, Style: CategoryBracket}
	if v := (FilterSet{"status": q.Statuses}).Validate([]Category{status}); len(v) > 0 {
		return Query{}, ViolationError(EFILTER, "invalid filters", v)
	}

	params := baseParams()
	params.Set("query_from", formatFloat(q.Start))
	params.Set("query_to", formatFloat(q.End))
	params.Set("search_type", searchType)
	params.Set(paramCommit, commitValue)
	for _, s := range q.Statuses {
		params.Set(categoryParam(status, s), "1")
	}
	return Query{base: src.url(src.ChemQuery.Path), params: params, paginated: true}, nil
}

// MaxQueryMasses is the most masses one LC-MS search accepts.
const MaxQueryMasses = 700

// Tolerance units.
const (
	UnitDalton = "Da"
	UnitPPM    = "ppm"
)

var (
	msIonModes      = []string{"positive", "negative", "neutral"}
	msmsIonModes    = []string{"positive", "negative"}
	toleranceUnits  = []string{UnitDalton, UnitPPM}
	collisionLevels = []string{"low", "med", "high"}
)

// MassQuery is an LC-MS search by measured masses.
type MassQuery struct {
	Masses        []float64
	IonMode       string
	Adducts       []string
	Tolerance     float64
	ToleranceUnit string
}

// BuildMassQuery builds the LC-MS search URLs of src, one per adduct type.
// Without adducts a single URL is returned. All violations are reported
// together under EMASSQUERY.
func BuildMassQuery(src Source, q MassQuery) ([]string, error) {
	if src.MassSearch == nil {
		return nil, Errorf(ENOTFOUND, "%s has no mass spectrum search", src.ID)
	}

	var violations []Violation
	switch n := len(q.Masses); {
	case n == 0:
		violations = append(violations, Violation{Field: "masses", Reason: "at least one mass is required"})
	case n > MaxQueryMasses:
		violations = append(violations, Violation{Field: "masses", Reason: fmt.Sprintf("at most %d masses per request, got %d", MaxQueryMasses, n)})
	}
	for _, m := range q.Masses {
		if !finite(m) {
			violations = append(violations, Violation{Field: "masses", Values: []string{formatFloat(m)}, Reason: "mass must be finite"})
		}
	}
	violations = appendChoice(violations, "ion_mode", q.IonMode, msIonModes)
	violations = appendTolerance(violations, "tolerance", q.Tolerance, q.ToleranceUnit)
	if len(violations) > 0 {
		return nil, ViolationError(EMASSQUERY, "invalid mass query", violations)
	}

	params := baseParams()
	params.Set(paramCommit, commitValue)
	params.Set("database", src.MassSearch.Database)
	params.Set("ms_search_ion_mode", q.IonMode)
	params.Set("tolerance", formatFloat(q.Tolerance))
	params.Set("tolerance_units", q.ToleranceUnit)
	masses := make([]string, len(q.Masses))
	for i, m := range q.Masses {
		masses[i] = formatFloat(m)
	}
	params.Set("query_masses", strings.Join(masses, "\n"))

	base := src.url(src.MassSearch.Path)
	if len(q.Adducts) == 0 {
		return []string{base + "?" + params.Encode()}, nil
	}
	urls := make([]string, 0, len(q.Adducts))
	for _, a := range q.Adducts {
		params.Set("adduct_type", a)
		urls = append(urls, base+"?"+params.Encode())
	}
	return urls, nil
}

// TandemQuery is an LC-MS/MS search by parent ion and fragment peaks.
type TandemQuery struct {
	ParentIonMass          float64
	ParentIonTolerance     float64
	ParentIonToleranceUnit string
	IonMode                string

	// CollisionEnergy is "low", "med" or "high".
	CollisionEnergy string

	// Peaks are "m/z intensity" pairs, e.g. "40.948 0.174".
	Peaks []string

	MZTolerance     float64
	MZToleranceUnit string

	// Predicted includes predicted spectra in the search.
	Predicted bool
}

// TandemDropColumns are removed from tandem search results.
var TandemDropColumns = tandemDrop

// BuildTandemQuery builds the LC-MS/MS search URL of src.
func BuildTandemQuery(src Source, q TandemQuery) (string, error) {
	if src.TandemPath == "" {
		return "", Errorf(ENOTFOUND, "%s has no tandem mass spectrum search", src.ID)
	}

	var violations []Violation
	if !finite(q.ParentIonMass) || q.ParentIonMass <= 0 {
		violations = append(violations, Violation{Field: "parent_ion_mass", Values: []string{formatFloat(q.ParentIonMass)}, Reason: "must be a positive number"})
	}
	violations = appendTolerance(violations, "parent_ion_mass_tolerance", q.ParentIonTolerance, q.ParentIonToleranceUnit)
	violations = appendChoice(violations, "ion_mode", q.IonMode, msmsIonModes)
	violations = appendChoice(violations, "collision_energy", q.CollisionEnergy, collisionLevels)
	violations = appendTolerance(violations, "mass_charge_tolerance", q.MZTolerance, q.MZToleranceUnit)
	for _, p := range q.Peaks {
		if len(strings.Fields(p)) != 2 {
			violations = append(violations, Violation{Field: "peaks", Values: []string{p}, Reason: `peak must be "m/z intensity"`})
		}
	}
	if len(violations) > 0 {
		return "", ViolationError(EMASSQUERY, "invalid tandem query", violations)
	}

	params := baseParams()
	params.Set(paramCommit, commitValue)
	params.Set("searcher", "metabolites")
	params.Set("parent_ion_mass", formatFloat(q.ParentIonMass))
	params.Set("parent_ion_mass_tolerance", formatFloat(q.ParentIonTolerance))
	params.Set("parent_ion_mass_tolerance_units", q.ParentIonToleranceUnit)
	params.Set("ms_ms_search_ion_mode", q.IonMode)
	params.Set("collision_energy_level", q.CollisionEnergy)
	params.Set("mass_charge_tolerance", formatFloat(q.MZTolerance))
	params.Set("mass_charge_tolerance_units", q.MZToleranceUnit)
	params.Set("peaks", strings.Join(q.Peaks, "\r\n"))
	if q.Predicted {
		params.Set("predicted", "1")
	}
	return src.url(src.TandemPath) + "?" + params.Encode(), nil
}

// BuildTextSearch builds the free-text search of src. An empty searcher
// selects the source's first searcher.
func BuildTextSearch(src Source, query, searcher string) (Query, error) {
	if src.TextSearch == nil {
		return Query{}, Errorf(ENOTFOUND, "%s has no text search", src.ID)
	}
	if strings.TrimSpace(query) == "" {
		return Query{}, Errorf(EINVALID, "search query required")
	}
	if searcher == "" {
		searcher = src.TextSearch.Searchers[0]
	}
	if !slices.Contains(src.TextSearch.Searchers, searcher) {
		return Query{}, ViolationError(EFILTER, "invalid searcher", []Violation{{
			Field:  "searcher",
			Values: []string{searcher},
			Reason: "allowed values are " + strings.Join(src.TextSearch.Searchers, ", "),
		}})
	}
	params := baseParams()
	params.Set("query", query)
	params.Set("searcher", searcher)
	return Query{base: src.url(src.TextSearch.Path), params: params, paginated: src.TextSearch.Paginated}, nil
}

// KeywordQuery is a ReSpect keyword search. At least one field must be set.
type KeywordQuery struct {
	Name      string
	Formula   string
	ExactMass string
	Tolerance string
}

// BuildKeywordSearch builds the ReSpect keyword search URL rooted at src.
func BuildKeywordSearch(src Source, q KeywordQuery) (string, error) {
	if q == (KeywordQuery{}) {
		return "", Errorf(EINVALID, "keyword search needs a name, formula or exact mass")
	}
	params := url.Values{}
	params.Set("name", q.Name)
	params.Set("formula", q.Formula)
	params.Set("exactmass", q.ExactMass)
	params.Set("tolerance", q.Tolerance)
	params.Set("hideGraph", "hideGraph")
	return src.url(respectKeywordPath) + "?" + params.Encode(), nil
}

// DetailURL returns the detail page URL of accession on src.
func DetailURL(src Source, accession string) string {
	if strings.HasSuffix(src.DetailPath, "=") {
		return src.url(src.DetailPath + url.QueryEscape(accession))
	}
	return src.url(src.DetailPath + url.PathEscape(accession))
}

// StructureURL returns the structure image URL of accession on src.
func StructureURL(src Source, accession string) (string, error) {
	if src.StructurePath == "" {
		return "", Errorf(ENOTFOUND, "%s serves no structure images", src.ID)
	}
	return src.url(fmt.Sprintf(src.StructurePath, url.PathEscape(accession))), nil
}

func appendChoice(violations []Violation, field, value string, allowed []string) []Violation {
	if slices.Contains(allowed, value) {
		return violations
	}
	return append(violations, Violation{
		Field:  field,
		Values: []string{value},
		Reason: "allowed values are " + strings.Join(allowed, ", "),
	})
}

func appendTolerance(violations []Violation, field string, tolerance float64, unit string) []Violation {
	if !finite(tolerance) || tolerance < 0 {
		violations = append(violations, Violation{Field: field, Values: []string{formatFloat(tolerance)}, Reason: "must be a non-negative number"})
	}
	return appendChoice(violations, field+"_units", unit, toleranceUnits)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
