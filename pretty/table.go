// Package pretty renders tables and peak lists with go-pretty.
package pretty

import (
	"io"
	"slices"
	"strings"

	"github.com/fwojciec/xconnector"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Format is an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatTable, FormatCSV, FormatMarkdown}

// ParseFormat returns the format named s. Returns EINVALID for any other name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "md" {
		return FormatMarkdown, nil
	}
	if !slices.Contains(Formats, f) {
		return "", xconnector.Errorf(xconnector.EINVALID, "unknown format %q (choose from table, csv, markdown)", s)
	}
	return f, nil
}

// LabelColumn heads the column of row labels.
const LabelColumn = "ID"

func newWriter() table.Writer {
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	t := table.NewWriter()
	t.SetStyle(style)
	return t
}

func render(w io.Writer, t table.Writer, f Format) error {
	var out string
	switch f {
	case FormatCSV:
		out = t.RenderCSV()
	case FormatMarkdown:
		out = t.RenderMarkdown()
	default:
		out = t.Render()
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}

func row(values ...string) table.Row {
	r := make(table.Row, len(values))
	for i, v := range values {
		r[i] = v
	}
	return r
}

// WriteTable writes t with its row labels as the first column.
func WriteTable(w io.Writer, t xconnector.Table, f Format) error {
	tw := newWriter()
	tw.AppendHeader(row(append([]string{LabelColumn}, t.Columns...)...))
	for _, r := range t.Rows {
		values := make([]string, len(t.Columns))
		for i := range values {
			values[i] = xconnector.NotAValue
			if i < len(r.Values) {
				values[i] = r.Values[i]
			}
		}
		tw.AppendRow(row(append([]string{r.Label}, values...)...))
	}
	return render(w, tw, f)
}

// WriteRecords writes records as one table, one row per record.
func WriteRecords(w io.Writer, records []xconnector.Record, f Format) error {
	return WriteTable(w, xconnector.RecordTable(records), f)
}

// WriteIDs writes a one-column list of accessions.
func WriteIDs(w io.Writer, ids []string, f Format) error {
	tw := newWriter()
	tw.AppendHeader(row(LabelColumn))
	for _, id := range ids {
		tw.AppendRow(row(id))
	}
	return render(w, tw, f)
}
