package xconnector

import (
	"fmt"
	"slices"
	"strings"
)

// DetailPage is the outcome of fetching and parsing one accession's page.
type DetailPage struct {
	Accession string
	Tables    []RawTable

	// Err is the fetch or parse error, if any.
	Err error
}

// StatusFromError maps a fetch error to the status of the sentinel it
// produces.
func StatusFromError(err error) Status {
	switch ErrorCode(err) {
	case "":
		return StatusFound
	case ENOTFOUND:
		return StatusNotFound
	case ESECTION:
		return StatusSectionAbsent
	default:
		return StatusFetchFailed
	}
}

// keyValues returns the first two columns of t as key/value pairs, header
// row included. Keys and values are trimmed.
func keyValues(t RawTable) [][2]string {
	rows := t.Rows
	if len(t.Header) >= 2 {
		rows = append([][]string{t.Header}, rows...)
	}
	pairs := make([][2]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		pairs = append(pairs, [2]string{strings.TrimSpace(row[0]), strings.TrimSpace(row[1])})
	}
	return pairs
}

// NormalizeDetailPage extracts the general information of accession from
// the tables of its detail page.
//
// The first table is read as key/value rows. Keys outside the source's
// allow-list are dropped, the first occurrence of a repeated key wins, and
// fields follow allow-list order. The record is labelled by the value of
// the source's identifier field. When the page has no tables, the first
// table has fewer than two columns, or the identifier field is missing, a
// sentinel record labelled by accession is returned instead. It never fails.
func NormalizeDetailPage(accession string, tables []RawTable, src Source) Record {
	if len(tables) == 0 {
		return SentinelRecord(accession, src.GeneralFields, StatusNotFound, "page has no tables")
	}
	if tables[0].Width() < 2 {
		return SentinelRecord(accession, src.GeneralFields, StatusLayoutChanged, "first table has fewer than two columns")
	}

	values := make(map[string]string)
	for _, kv := range keyValues(tables[0]) {
		if !slices.Contains(src.GeneralFields, kv[0]) {
			continue
		}
		if _, ok := values[kv[0]]; !ok {
			values[kv[0]] = kv[1]
		}
	}

	label, ok := values[src.PrimaryField]
	if !ok {
		return SentinelRecord(accession, src.GeneralFields, StatusLayoutChanged,
			fmt.Sprintf("identifier field %q missing", src.PrimaryField))
	}

	r := Record{Label: label, Accession: accession, Status: StatusFound}
	for _, name := range src.GeneralFields {
		if v, ok := values[name]; ok {
			r.Fields = append(r.Fields, Field{Name: name, Value: v})
		}
	}
	return r
}

// NormalizePage is NormalizeDetailPage for a fetched page. A fetch error
// yields a sentinel whose status tells not-found apart from other failures.
func NormalizePage(page DetailPage, src Source) Record {
	if page.Err != nil {
		return SentinelRecord(page.Accession, src.GeneralFields, StatusFromError(page.Err), page.Err.Error())
	}
	return NormalizeDetailPage(page.Accession, page.Tables, src)
}

// findSection locates the table of a section. Headings are matched first;
// the legacy position is used only when the parser found no headings at
// all, so a heading-aware page never shifts onto the wrong table.
func findSection(tables []RawTable, spec SectionSpec) (RawTable, bool) {
	headed := slices.ContainsFunc(tables, func(t RawTable) bool { return t.Heading != "" })
	if headed {
		for _, t := range tables {
			if strings.EqualFold(strings.TrimSpace(t.Heading), spec.Heading) {
				return t, true
			}
		}
		return RawTable{}, false
	}
	if spec.Index >= 0 && spec.Index < len(tables) {
		return tables[spec.Index], true
	}
	return RawTable{}, false
}

// NormalizeSection extracts one section of accession's detail page. Every
// row is labelled with accession. An absent section yields a single
// sentinel row over the section's expected columns.
func NormalizeSection(accession string, tables []RawTable, spec SectionSpec) SectionTable {
	out := SectionTable{Accession: accession, Section: spec.Name}

	t, ok := findSection(tables, spec)
	if !ok {
		return sectionSentinel(out, spec, StatusSectionAbsent, fmt.Sprintf("section %q not found", spec.Heading))
	}
	if t.Width() == 0 {
		return sectionSentinel(out, spec, StatusLayoutChanged, fmt.Sprintf("section %q has no columns", spec.Heading))
	}

	if spec.Collapse {
		t = t.Truncate(1)
		out.Columns = []string{accession}
	} else {
		t = t.Truncate(spec.MaxColumns).RenameColumns(spec.Rename)
		out.Columns = t.Header
		if len(out.Columns) == 0 {
			out.Columns = clip(spec.Columns, t.Width())
		}
	}

	for _, row := range t.Rows {
		out.Rows = append(out.Rows, PropertyRow{Label: accession, Values: fit(row, len(out.Columns))})
	}
	out.Status = StatusFound
	return out
}

// SectionFromPage is NormalizeSection for a fetched page.
func SectionFromPage(page DetailPage, spec SectionSpec) SectionTable {
	if page.Err != nil {
		out := SectionTable{Accession: page.Accession, Section: spec.Name}
		return sectionSentinel(out, spec, StatusFromError(page.Err), page.Err.Error())
	}
	return NormalizeSection(page.Accession, page.Tables, spec)
}

func sectionSentinel(out SectionTable, spec SectionSpec, status Status, reason string) SectionTable {
	out.Columns = slices.Clone(spec.Columns)
	if spec.Collapse {
		out.Columns = []string{out.Accession}
	}
	values := make([]string, len(out.Columns))
	for i := range values {
		values[i] = spec.sentinel()
	}
	out.Rows = []PropertyRow{{Label: out.Accession, Values: values}}
	out.Status = status
	out.Reason = reason
	return out
}

// NormalizeFullRecord extracts every key/value row of the first table of
// accession's detail page, not only the allow-listed ones. Rows naming a
// section are dropped; rows naming an excluded section are dropped together
// with the row that follows them. The first occurrence of a repeated key
// wins. On failure the record has no fields and is labelled by accession.
func NormalizeFullRecord(accession string, tables []RawTable, src Source) Record {
	empty := func(status Status, reason string) Record {
		return Record{Label: accession, Accession: accession, Status: status, Reason: reason}
	}
	if len(tables) == 0 {
		return empty(StatusNotFound, "page has no tables")
	}
	if tables[0].Width() < 2 {
		return empty(StatusLayoutChanged, "first table has fewer than two columns")
	}

	headings := make([]string, 0, len(src.Sections))
	for _, s := range src.Sections {
		headings = append(headings, s.Heading)
	}

	r := Record{Accession: accession, Status: StatusFound}
	seen := make(map[string]bool)
	skipNext := false
	for _, kv := range keyValues(tables[0]) {
		if skipNext {
			skipNext = false
			continue
		}
		key := kv[0]
		if slices.Contains(src.FullRecordExclude, key) {
			skipNext = true
			continue
		}
		if slices.Contains(headings, key) || seen[key] {
			continue
		}
		seen[key] = true
		r.Fields = append(r.Fields, Field{Name: key, Value: kv[1]})
	}

	label, ok := r.Get(src.PrimaryField)
	if !ok {
		return empty(StatusLayoutChanged, fmt.Sprintf("identifier field %q missing", src.PrimaryField))
	}
	r.Label = label
	return r
}

// NormalizeBrowseTable reshapes one result table of a browse endpoint:
// configured columns are dropped or truncated, and rows are labelled with
// the table heading when the browser groups results by heading.
func NormalizeBrowseTable(b Browser, t RawTable) Table {
	if len(b.DropColumns) > 0 {
		t = t.DropColumns(b.DropColumns...)
	}
	if b.KeepColumns > 0 {
		t = t.Truncate(b.KeepColumns)
	}
	if b.FormulaWeight != "" {
		t = SplitFormulaWeightColumn(t, b.FormulaWeight)
	}
	label := ""
	if b.LabelByHeading {
		label = strings.TrimSpace(t.Heading)
	}
	return TableFromRaw(t, label)
}
