package xconnector

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// RawTable is a table as parsed from an HTML page, before normalization.
// A page's tables are kept in document order.
type RawTable struct {
	// Heading is the label of the page section owning the table. Empty
	// when the page gives the table no label.
	Heading string
	Header  []string
	Rows    [][]string
}

// Width returns the number of columns of the table.
func (t RawTable) Width() int {
	w := len(t.Header)
	for _, row := range t.Rows {
		w = max(w, len(row))
	}
	return w
}

// Cell returns the value at row r, column c, or "" when the row is short.
func (t RawTable) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][c]
}

// Column returns the index of the named header column, or -1.
func (t RawTable) Column(name string) int {
	return slices.Index(t.Header, name)
}

// Truncate returns a copy keeping only the first n columns. n <= 0 keeps all.
func (t RawTable) Truncate(n int) RawTable {
	if n <= 0 {
		return t.clone()
	}
	out := RawTable{Heading: t.Heading, Header: clip(t.Header, n)}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, clip(row, n))
	}
	return out
}

// DropColumns returns a copy without the named header columns.
// Unknown names are ignored.
func (t RawTable) DropColumns(names ...string) RawTable {
	var keep []int
	for i, h := range t.Header {
		if !slices.Contains(names, h) {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(t.Header) {
		return t.clone()
	}
	out := RawTable{Heading: t.Heading, Header: pick(t.Header, keep)}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, pick(row, keep))
	}
	return out
}

// RenameColumns returns a copy with header names replaced per rename.
func (t RawTable) RenameColumns(rename map[string]string) RawTable {
	out := t.clone()
	for i, h := range out.Header {
		if to, ok := rename[h]; ok {
			out.Header[i] = to
		}
	}
	return out
}

func (t RawTable) clone() RawTable {
	out := RawTable{Heading: t.Heading, Header: slices.Clone(t.Header)}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, slices.Clone(row))
	}
	return out
}

func clip(s []string, n int) []string {
	return slices.Clone(s[:min(n, len(s))])
}

func pick(s []string, idx []int) []string {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		if i < len(s) {
			out = append(out, s[i])
		}
	}
	return out
}

// PropertyRow is one row of a labelled table. Label is the accession (or
// heading) the row belongs to.
type PropertyRow struct {
	Label  string
	Values []string
}

// Table is a labelled table combining rows from many accessions.
type Table struct {
	Columns []string
	Rows    []PropertyRow
}

// Value returns the cell of row r under the named column, or NotAValue.
func (t Table) Value(r int, column string) string {
	c := slices.Index(t.Columns, column)
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r].Values) {
		return NotAValue
	}
	return t.Rows[r].Values[c]
}

// Append adds rows under columns, widening the table with any new column
// and filling cells absent on either side with NotAValue.
func (t *Table) Append(columns []string, rows []PropertyRow) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		j := slices.Index(t.Columns, c)
		if j < 0 {
			t.Columns = append(t.Columns, c)
			j = len(t.Columns) - 1
		}
		idx[i] = j
	}
	for i := range t.Rows {
		t.Rows[i].Values = pad(t.Rows[i].Values, len(t.Columns))
	}
	for _, row := range rows {
		values := pad(nil, len(t.Columns))
		for i, v := range row.Values {
			if i < len(idx) {
				values[idx[i]] = v
			}
		}
		t.Rows = append(t.Rows, PropertyRow{Label: row.Label, Values: values})
	}
}

// SortBy orders rows by the named columns, comparing numerically when both
// cells parse as numbers. Unknown columns are ignored.
func (t *Table) SortBy(columns ...string) {
	var idx []int
	for _, c := range columns {
		if i := slices.Index(t.Columns, c); i >= 0 {
			idx = append(idx, i)
		}
	}
	slices.SortStableFunc(t.Rows, func(a, b PropertyRow) int {
		for _, i := range idx {
			if c := compareCells(cellAt(a.Values, i), cellAt(b.Values, i)); c != 0 {
				return c
			}
		}
		return 0
	})
}

func cellAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func compareCells(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(fa, fb)
	}
	return strings.Compare(a, b)
}

func pad(values []string, n int) []string {
	for len(values) < n {
		values = append(values, NotAValue)
	}
	return values
}

// fit returns a copy of values padded or clipped to exactly n cells.
func fit(values []string, n int) []string {
	return clip(pad(slices.Clone(values), n), n)
}

// TableFromRaw labels every row of t with label.
func TableFromRaw(t RawTable, label string) Table {
	out := Table{Columns: slices.Clone(t.Header)}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, PropertyRow{Label: label, Values: pad(slices.Clone(row), len(t.Header))})
	}
	return out
}

// SplitFormulaWeight splits a cell holding a molecular formula and its
// weight, e.g. "C6H12O6 180.156". Without whitespace the trailing run of
// digits and dots is taken as the weight.
func SplitFormulaWeight(cell string) (formula, weight string) {
	cell = strings.TrimSpace(cell)
	if i := strings.LastIndexFunc(cell, unicode.IsSpace); i >= 0 {
		return strings.TrimSpace(cell[:i]), cell[i+1:]
	}
	i := len(cell)
	for i > 0 {
		r := rune(cell[i-1])
		if !unicode.IsDigit(r) && r != '.' {
			break
		}
		i--
	}
	return cell[:i], cell[i:]
}

// SplitFormulaWeightColumn replaces the named column of t with a "Formula"
// and a "Weight" column. A table without the column is returned unchanged.
func SplitFormulaWeightColumn(t RawTable, column string) RawTable {
	c := t.Column(column)
	if c < 0 {
		return t
	}
	out := RawTable{Heading: t.Heading}
	out.Header = append(out.Header, t.Header[:c]...)
	out.Header = append(out.Header, "Formula", "Weight")
	out.Header = append(out.Header, t.Header[c+1:]...)
	for _, row := range t.Rows {
		f, w := SplitFormulaWeight(cellAt(row, c))
		var next []string
		next = append(next, row[:min(c, len(row))]...)
		next = append(next, f, w)
		if c+1 < len(row) {
			next = append(next, row[c+1:]...)
		}
		out.Rows = append(out.Rows, next)
	}
	return out
}
