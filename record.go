package xconnector

import "slices"

// Placeholder cell values.
const (
	// NotAValue fills every field of a general-info sentinel record.
	NotAValue = "NaN"
	// NotAvailable fills the sentinel row of an absent section.
	NotAvailable = "NA"
)

// Status records how a record or section table was produced.
type Status string

const (
	StatusFound         Status = "found"
	StatusNotFound      Status = "not_found"
	StatusFetchFailed   Status = "fetch_failed"
	StatusLayoutChanged Status = "layout_changed"
	StatusSectionAbsent Status = "section_absent"
)

// Field is one key/value pair of a record.
type Field struct {
	Name  string
	Value string
}

// Record is the normalized general information of one accession.
//
// On success Label is the page's own identifier value, which may differ
// from Accession. Otherwise Label is Accession, every allow-listed field is
// NotAValue, and Status and Reason say why.
type Record struct {
	Label     string
	Accession string
	Fields    []Field
	Status    Status
	Reason    string
}

// Get returns the value of the named field.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Found reports whether the record was extracted from a page.
func (r Record) Found() bool {
	return r.Status == StatusFound
}

// FieldNames returns the record's field names in order.
func (r Record) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// SentinelRecord returns the placeholder record for an accession whose page
// could not be normalized.
func SentinelRecord(accession string, fields []string, status Status, reason string) Record {
	r := Record{
		Label:     accession,
		Accession: accession,
		Status:    status,
		Reason:    reason,
	}
	for _, name := range fields {
		r.Fields = append(r.Fields, Field{Name: name, Value: NotAValue})
	}
	return r
}

// RecordTable concatenates records into one table labelled by record label.
// Columns are the union of field names in first-seen order.
func RecordTable(records []Record) Table {
	var t Table
	for _, r := range records {
		values := make([]string, len(r.Fields))
		for i, f := range r.Fields {
			values[i] = f.Value
		}
		t.Append(r.FieldNames(), []PropertyRow{{Label: r.Label, Values: values}})
	}
	return t
}

// SectionTable is one detail-page section normalized for one accession.
// Every row is labelled with the accession.
type SectionTable struct {
	Accession string
	Section   string
	Columns   []string
	Rows      []PropertyRow
	Status    Status
	Reason    string
}

// Found reports whether the section was extracted from a page.
func (s SectionTable) Found() bool {
	return s.Status == StatusFound
}

// Combine concatenates section tables of many accessions, in order. The
// result's columns are the union of the inputs' columns.
func Combine(sections ...SectionTable) Table {
	var t Table
	for _, s := range sections {
		rows := make([]PropertyRow, len(s.Rows))
		for i, row := range s.Rows {
			rows[i] = PropertyRow{Label: row.Label, Values: slices.Clone(row.Values)}
		}
		t.Append(s.Columns, rows)
	}
	return t
}
