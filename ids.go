package xconnector

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

// IDSet is a deduplicated, unordered set of accessions.
type IDSet map[string]struct{}

// Add inserts ids into the set.
func (s IDSet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Merge adds every id of other to the set.
func (s IDSet) Merge(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Sorted returns the ids in lexical order, for display.
func (s IDSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// ExtractIDs returns every non-overlapping occurrence of the pattern's
// prefix followed by exactly Digits decimal digits. Candidates with fewer
// digits are skipped; longer digit runs contribute their first Digits
// digits.
func ExtractIDs(p IDPattern, text string) IDSet {
	ids := make(IDSet)
	if p.Prefix == "" || p.Digits <= 0 {
		return ids
	}
	for i := 0; ; {
		j := strings.Index(text[i:], p.Prefix)
		if j < 0 {
			return ids
		}
		start := i + j + len(p.Prefix)
		end := start + p.Digits
		if end <= len(text) && allDigits(text[start:end]) {
			ids.Add(text[i+j : end])
			i = end
			continue
		}
		i = start
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

var keywordAccession = regexp.MustCompile(`menta\.cgi/respect/datail/datail\?accession=([A-Z]+[0-9]+)`)

// ExtractKeywordAccessions returns the accessions linked from a ReSpect
// keyword search result page, deduplicated, in page order.
func ExtractKeywordAccessions(html string) []string {
	var out []string
	seen := make(IDSet)
	for _, m := range keywordAccession.FindAllStringSubmatch(html, -1) {
		if !seen.Contains(m[1]) {
			seen.Add(m[1])
			out = append(out, m[1])
		}
	}
	return out
}
