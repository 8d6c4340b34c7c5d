package xconnector

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Peak is one peak of a mass spectrum.
type Peak struct {
	MZ                float64
	Intensity         float64
	RelativeIntensity float64
}

// Spectrum is a ReSpect record: tagged metadata fields plus the peak list.
type Spectrum struct {
	Record
	Peaks []Peak
}

const (
	accessionTag = "ACCESSION"
	peakMarker   = "rel.int."
)

// NormalizeSpectrum pivots the Tag / Sub Tag / Data table of a ReSpect
// record page into one record. Fields are named "Tag" or "Tag_SubTag";
// names that repeat are numbered with a running counter. The ACCESSION
// row labels the record and is not kept as a field. The last row carries
// the peak list, parsed into Peaks.
//
// A page with fewer than two tables yields an empty record labelled by
// accession.
func NormalizeSpectrum(accession string, tables []RawTable) Spectrum {
	empty := func(status Status, reason string) Spectrum {
		return Spectrum{Record: Record{Label: accession, Accession: accession, Status: status, Reason: reason}}
	}
	if len(tables) < 2 {
		return empty(StatusNotFound, "record table not found")
	}
	t := tables[1]
	if t.Width() < 3 || len(t.Rows) == 0 {
		return empty(StatusLayoutChanged, "record table must have tag, sub tag and data columns")
	}

	tag, sub, data := 0, 1, 2
	if i := t.Column("Tag"); i >= 0 {
		tag = i
	}
	if i := t.Column("Sub Tag"); i >= 0 {
		sub = i
	}
	if i := t.Column("Data"); i >= 0 {
		data = i
	}

	last := len(t.Rows) - 1
	peaks := ParsePeaks(t.Cell(last, data))

	var label string
	var names, values []string
	for r := range last {
		name := strings.TrimSpace(t.Cell(r, tag))
		value := strings.TrimSpace(t.Cell(r, data))
		if name == accessionTag {
			if label == "" {
				label = value
			}
			continue
		}
		if s := strings.TrimSpace(t.Cell(r, sub)); s != "" {
			name = name + "_" + s
		}
		names = append(names, name)
		values = append(values, value)
	}
	if label == "" {
		return empty(StatusLayoutChanged, fmt.Sprintf("%s row missing", accessionTag))
	}

	names = numberDuplicates(names)
	s := Spectrum{
		Record: Record{Label: label, Accession: accession, Status: StatusFound},
		Peaks:  peaks,
	}
	for i, name := range names {
		s.Fields = append(s.Fields, Field{Name: name, Value: values[i]})
	}
	return s
}

// numberDuplicates suffixes every occurrence of a repeated name with a
// counter shared by all repeated names.
func numberDuplicates(names []string) []string {
	counts := make(map[string]int)
	for _, n := range names {
		counts[n]++
	}
	out := slices.Clone(names)
	n := 0
	for i, name := range out {
		if counts[name] > 1 {
			n++
			out[i] = fmt.Sprintf("%s_%d", name, n)
		}
	}
	return out
}

// ParsePeaks parses the peak list following the "rel.int." marker as
// (m/z, intensity, relative intensity) triples. Header words before the
// first number and unparsable triples are skipped.
func ParsePeaks(text string) []Peak {
	i := strings.Index(text, peakMarker)
	if i < 0 {
		return nil
	}
	tokens := strings.FieldsFunc(text[i+len(peakMarker):], func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	start := slices.IndexFunc(tokens, func(tok string) bool {
		_, err := strconv.ParseFloat(tok, 64)
		return err == nil
	})
	if start < 0 {
		return nil
	}
	tokens = tokens[start:]

	var peaks []Peak
	for j := 0; j+3 <= len(tokens); j += 3 {
		mz, err1 := strconv.ParseFloat(tokens[j], 64)
		in, err2 := strconv.ParseFloat(tokens[j+1], 64)
		rel, err3 := strconv.ParseFloat(tokens[j+2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		peaks = append(peaks, Peak{MZ: mz, Intensity: in, RelativeIntensity: rel})
	}
	return peaks
}

// SortPeaks orders peaks by ascending m/z.
func SortPeaks(peaks []Peak) []Peak {
	out := slices.Clone(peaks)
	slices.SortStableFunc(out, func(a, b Peak) int {
		return cmp.Compare(a.MZ, b.MZ)
	})
	return out
}
